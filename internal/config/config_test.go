package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, "registrations.csv", cfg.DataFile)
	require.True(t, cfg.AutoRefresh)
	require.False(t, cfg.Debug)
	require.True(t, cfg.UI.ShowStatusBar)
	require.False(t, cfg.UI.ShowTimestamps)
	require.Equal(t, "dark", cfg.UI.MarkdownStyle)
	require.Empty(t, cfg.Theme.Mode)
}

func TestDefaults_Tracing(t *testing.T) {
	cfg := Defaults()

	require.False(t, cfg.Tracing.Enabled)
	require.Equal(t, "file", cfg.Tracing.Exporter)
	require.Equal(t, "localhost:4317", cfg.Tracing.OTLPEndpoint)
	require.Equal(t, 1.0, cfg.Tracing.SampleRate)
}

func TestDefaults_AreValid(t *testing.T) {
	require.NoError(t, Validate(Defaults()))
}

func TestValidate_ZeroValue(t *testing.T) {
	// Zero value config should be valid (empty values use defaults)
	require.NoError(t, Validate(Config{}))
}

func TestValidateUI_ValidStyles(t *testing.T) {
	styles := []string{"", "dark", "light"}
	for _, style := range styles {
		err := ValidateUI(UIConfig{MarkdownStyle: style})
		require.NoError(t, err, "style %q should be valid", style)
	}
}

func TestValidateUI_InvalidStyle(t *testing.T) {
	err := ValidateUI(UIConfig{MarkdownStyle: "sepia"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "ui.markdown_style must be")
	require.Contains(t, err.Error(), `"sepia"`)
}

func TestValidateTheme_ValidModes(t *testing.T) {
	modes := []string{"", "light", "dark"}
	for _, mode := range modes {
		err := ValidateTheme(ThemeConfig{Mode: mode})
		require.NoError(t, err, "mode %q should be valid", mode)
	}
}

func TestValidateTheme_InvalidMode(t *testing.T) {
	err := ValidateTheme(ThemeConfig{Mode: "midnight"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "theme.mode must be")
}

func TestValidateTheme_ValidAccents(t *testing.T) {
	accents := []string{"", "#7D56F4", "#abc", "#00FF00"}
	for _, accent := range accents {
		err := ValidateTheme(ThemeConfig{Accent: accent})
		require.NoError(t, err, "accent %q should be valid", accent)
	}
}

func TestValidateTheme_InvalidAccent(t *testing.T) {
	accents := []string{"purple", "7D56F4", "#XYZXYZ", "#12345"}
	for _, accent := range accents {
		err := ValidateTheme(ThemeConfig{Accent: accent})
		require.Error(t, err, "accent %q should be rejected", accent)
		require.Contains(t, err.Error(), "theme.accent must be a hex color")
	}
}

func TestValidateTracing_Empty(t *testing.T) {
	// Empty config should be valid (uses defaults)
	err := ValidateTracing(TracingConfig{})
	require.NoError(t, err)
}

func TestValidateTracing_ValidExporters(t *testing.T) {
	exporters := []string{"", "none", "file", "stdout", "otlp"}
	for _, exporter := range exporters {
		cfg := TracingConfig{Exporter: exporter, SampleRate: 1.0, OTLPEndpoint: "localhost:4317"}
		err := ValidateTracing(cfg)
		require.NoError(t, err, "exporter %q should be valid", exporter)
	}
}

func TestValidateTracing_InvalidExporter(t *testing.T) {
	err := ValidateTracing(TracingConfig{Exporter: "jaeger"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "tracing.exporter must be")
}

func TestValidateTracing_SampleRateOutOfRange(t *testing.T) {
	err := ValidateTracing(TracingConfig{SampleRate: 1.5})
	require.Error(t, err)
	require.Contains(t, err.Error(), "tracing.sample_rate must be between 0.0 and 1.0")

	err = ValidateTracing(TracingConfig{SampleRate: -0.1})
	require.Error(t, err)
	require.Contains(t, err.Error(), "tracing.sample_rate must be between 0.0 and 1.0")
}

func TestValidateTracing_OTLPRequiresEndpoint(t *testing.T) {
	cfg := TracingConfig{Enabled: true, Exporter: "otlp", SampleRate: 1.0}
	err := ValidateTracing(cfg)
	require.Error(t, err)
	require.Contains(t, err.Error(), "tracing.otlp_endpoint is required")
}

func TestValidateTracing_FileExporterAllowsEmptyPath(t *testing.T) {
	// file_path falls back to DefaultTracesFilePath at startup
	cfg := TracingConfig{Enabled: true, Exporter: "file", SampleRate: 1.0}
	err := ValidateTracing(cfg)
	require.NoError(t, err)
}

func TestDefaultTracesFilePath(t *testing.T) {
	path := DefaultTracesFilePath()
	if path == "" {
		t.Skip("no home directory available")
	}
	require.True(t, strings.HasSuffix(path, filepath.Join(".config", "rollcall", "traces", "traces.jsonl")))
}

func TestDefaultConfigTemplate_IsValidYAML(t *testing.T) {
	var parsed map[string]any
	err := yaml.Unmarshal([]byte(DefaultConfigTemplate()), &parsed)
	require.NoError(t, err)

	// Uncommented keys carry the defaults
	require.Equal(t, true, parsed["auto_refresh"])
}

func TestDefaultConfigTemplate_MatchesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".rollcall.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600))

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	defaults := Defaults()
	require.Equal(t, defaults.AutoRefresh, cfg.AutoRefresh)
	require.Equal(t, defaults.UI.ShowStatusBar, cfg.UI.ShowStatusBar)
	require.Equal(t, defaults.UI.ShowTimestamps, cfg.UI.ShowTimestamps)
}

func TestWriteDefaultConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nested", ".rollcall.yaml")

	err := WriteDefaultConfig(configPath)
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))
}

func TestWriteDefaultConfig_CreatesParentDir(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "a", "b", "config.yaml")

	err := WriteDefaultConfig(configPath)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(configPath))
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestConfig_UnmarshalFromYAML(t *testing.T) {
	configYAML := `
data_file: /tmp/people.csv
auto_refresh: false
debug: true
ui:
  show_status_bar: false
  show_timestamps: true
  markdown_style: light
theme:
  mode: dark
  accent: "#FF8787"
tracing:
  enabled: true
  exporter: stdout
  sample_rate: 0.5
`
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, ".rollcall.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(configYAML), 0o600))

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	require.Equal(t, "/tmp/people.csv", cfg.DataFile)
	require.False(t, cfg.AutoRefresh)
	require.True(t, cfg.Debug)
	require.False(t, cfg.UI.ShowStatusBar)
	require.True(t, cfg.UI.ShowTimestamps)
	require.Equal(t, "light", cfg.UI.MarkdownStyle)
	require.Equal(t, "dark", cfg.Theme.Mode)
	require.Equal(t, "#FF8787", cfg.Theme.Accent)
	require.True(t, cfg.Tracing.Enabled)
	require.Equal(t, "stdout", cfg.Tracing.Exporter)
	require.Equal(t, 0.5, cfg.Tracing.SampleRate)
	require.NoError(t, Validate(cfg))
}
