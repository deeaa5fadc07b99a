package styles

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ThemeConfig mirrors config.ThemeConfig to avoid circular imports.
type ThemeConfig struct {
	Mode   string
	Accent string
}

// ApplyTheme applies a theme configuration.
// Order of application:
// 1. Force light/dark mode (if specified)
// 2. Apply the accent override
// 3. Rebuild all Style objects
func ApplyTheme(cfg ThemeConfig) error {
	switch cfg.Mode {
	case "":
		// Terminal background detection stays in effect
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	default:
		return fmt.Errorf("unknown theme mode: %s", cfg.Mode)
	}

	if cfg.Accent != "" {
		if !isValidHexColor(cfg.Accent) {
			return fmt.Errorf("invalid hex color for accent: %s", cfg.Accent)
		}
		accent := lipgloss.AdaptiveColor{Light: cfg.Accent, Dark: cfg.Accent}
		AccentColor = accent
		BorderFocusColor = accent
		BotLabelColor = accent
		SpinnerColor = accent
	}

	rebuildStyles()

	return nil
}

// rebuildStyles recreates all Style objects with updated colors.
// This is necessary because lipgloss.Style objects capture colors at creation time.
func rebuildStyles() {
	UserLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(UserLabelColor)
	BotLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(BotLabelColor)

	TimestampStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	PromptStyle = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)

	StatusBarStyle = lipgloss.NewStyle().
		Foreground(TextSecondaryColor).
		Padding(0, 1)

	HintStyle = lipgloss.NewStyle().Foreground(TextMutedColor)

	ErrorStyle = lipgloss.NewStyle().
		Foreground(StatusErrorColor).
		Bold(true).
		Padding(1, 2)

	InputBorderStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderDefaultColor).
		Padding(0, 1)

	InputBorderFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderFocusColor).
		Padding(0, 1)
}

func isValidHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	_, err := strconv.ParseUint(hex, 16, 64)
	return err == nil
}
