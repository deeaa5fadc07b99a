package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestApplyTheme_Empty(t *testing.T) {
	err := ApplyTheme(ThemeConfig{})
	require.NoError(t, err)
}

func TestApplyTheme_Mode(t *testing.T) {
	restore := lipgloss.HasDarkBackground()
	defer lipgloss.SetHasDarkBackground(restore)

	err := ApplyTheme(ThemeConfig{Mode: "light"})
	require.NoError(t, err)
	require.False(t, lipgloss.HasDarkBackground())

	err = ApplyTheme(ThemeConfig{Mode: "dark"})
	require.NoError(t, err)
	require.True(t, lipgloss.HasDarkBackground())
}

func TestApplyTheme_InvalidMode(t *testing.T) {
	err := ApplyTheme(ThemeConfig{Mode: "solarized"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown theme mode")
}

func TestApplyTheme_Accent(t *testing.T) {
	restore := AccentColor
	defer func() {
		AccentColor = restore
		BorderFocusColor = restore
		BotLabelColor = restore
		SpinnerColor = restore
		rebuildStyles()
	}()

	err := ApplyTheme(ThemeConfig{Accent: "#FF0000"})
	require.NoError(t, err)
	require.Equal(t, "#FF0000", AccentColor.Dark)
	require.Equal(t, "#FF0000", AccentColor.Light)
	require.Equal(t, "#FF0000", BorderFocusColor.Dark)
	require.Equal(t, "#FF0000", BotLabelColor.Dark)
	require.Equal(t, "#FF0000", SpinnerColor.Dark)
}

func TestApplyTheme_AccentRebuildsStyles(t *testing.T) {
	restore := AccentColor
	defer func() {
		AccentColor = restore
		BorderFocusColor = restore
		BotLabelColor = restore
		SpinnerColor = restore
		rebuildStyles()
	}()

	err := ApplyTheme(ThemeConfig{Accent: "#00FF00"})
	require.NoError(t, err)
	// Styles capture colors at creation time, so the rebuild must pick
	// up the new accent.
	require.Equal(t, AccentColor, PromptStyle.GetForeground())
	require.Equal(t, BorderFocusColor, InputBorderFocusedStyle.GetBorderTopForeground())
}

func TestApplyTheme_AccentChangesRenderedOutput(t *testing.T) {
	// Force ANSI color output in test environment
	lipgloss.SetColorProfile(termenv.ANSI256)

	restore := AccentColor
	defer func() {
		AccentColor = restore
		BorderFocusColor = restore
		BotLabelColor = restore
		SpinnerColor = restore
		rebuildStyles()
	}()

	require.NoError(t, ApplyTheme(ThemeConfig{Accent: "#FF0000"}))
	red := PromptStyle.Render("> ")

	require.NoError(t, ApplyTheme(ThemeConfig{Accent: "#1E66F5"}))
	blue := PromptStyle.Render("> ")

	require.Contains(t, red, "\x1b[", "accent should produce escape sequences")
	require.NotEqual(t, red, blue, "different accents should render differently")
}

func TestAdaptiveColors_FollowBackgroundMode(t *testing.T) {
	// Force ANSI color output in test environment
	lipgloss.SetColorProfile(termenv.ANSI256)

	restore := lipgloss.HasDarkBackground()
	defer lipgloss.SetHasDarkBackground(restore)

	lipgloss.SetHasDarkBackground(true)
	dark := TimestampStyle.Render("12:04")
	lipgloss.SetHasDarkBackground(false)
	light := TimestampStyle.Render("12:04")

	require.NotEqual(t, dark, light, "muted text should pick a per-background variant")
}

func TestApplyTheme_InvalidAccent(t *testing.T) {
	err := ApplyTheme(ThemeConfig{Accent: "not-a-color"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid hex color")
}

func TestIsValidHexColor(t *testing.T) {
	tests := []struct {
		color string
		valid bool
	}{
		{"#FFF", true},
		{"#FFFFFF", true},
		{"#abc", true},
		{"#AbCdEf", true},
		{"#123456", true},
		{"FFFFFF", false},   // Missing #
		{"#FF", false},      // Too short
		{"#FFFFFFF", false}, // Too long
		{"#GGGGGG", false},  // Invalid chars
		{"not-color", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.color, func(t *testing.T) {
			require.Equal(t, tt.valid, isValidHexColor(tt.color))
		})
	}
}
