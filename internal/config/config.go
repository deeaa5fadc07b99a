// Package config provides configuration types and defaults for rollcall.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"rollcall/internal/log"
)

// DefaultDataFile is the registration store location when none is configured.
const DefaultDataFile = "registrations.csv"

// Config holds all configuration options for rollcall.
type Config struct {
	DataFile    string        `mapstructure:"data_file"`
	AutoRefresh bool          `mapstructure:"auto_refresh"`
	Debug       bool          `mapstructure:"debug"`
	UI          UIConfig      `mapstructure:"ui"`
	Theme       ThemeConfig   `mapstructure:"theme"`
	Tracing     TracingConfig `mapstructure:"tracing"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar  bool   `mapstructure:"show_status_bar"`
	ShowTimestamps bool   `mapstructure:"show_timestamps"`
	MarkdownStyle  string `mapstructure:"markdown_style"` // "dark" (default) or "light"
}

// ThemeConfig holds theme customization options.
type ThemeConfig struct {
	// Mode forces light or dark mode. If empty, uses terminal detection.
	// Valid values: "light", "dark", ""
	Mode string `mapstructure:"mode"`

	// Accent overrides the accent color used for highlights and the
	// status bar. Hex color, e.g. "#7D56F4".
	Accent string `mapstructure:"accent"`
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/rollcall/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// 1.0 = all traces, 0.1 = 10% of traces
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/rollcall/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rollcall", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DataFile:    DefaultDataFile,
		AutoRefresh: true,
		Debug:       false,
		UI: UIConfig{
			ShowStatusBar:  true,
			ShowTimestamps: false,
			MarkdownStyle:  "dark",
		},
		Theme: ThemeConfig{
			// Empty mode uses terminal background detection.
			Mode: "",
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "", // Derived from config dir at runtime
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// Validate checks the full configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func Validate(cfg Config) error {
	if err := ValidateUI(cfg.UI); err != nil {
		return err
	}
	if err := ValidateTheme(cfg.Theme); err != nil {
		return err
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateUI checks user interface configuration for errors.
func ValidateUI(ui UIConfig) error {
	if ui.MarkdownStyle != "" {
		switch ui.MarkdownStyle {
		case "dark", "light":
			// Valid
		default:
			return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", ui.MarkdownStyle)
		}
	}
	return nil
}

// ValidateTheme checks theme configuration for errors.
func ValidateTheme(theme ThemeConfig) error {
	if theme.Mode != "" && theme.Mode != "light" && theme.Mode != "dark" {
		return fmt.Errorf("theme.mode must be \"light\" or \"dark\", got %q", theme.Mode)
	}
	if theme.Accent != "" && !isHexColor(theme.Accent) {
		return fmt.Errorf("theme.accent must be a hex color like \"#7D56F4\", got %q", theme.Accent)
	}
	return nil
}

// isHexColor reports whether s is a #RGB or #RRGGBB hex color.
func isHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	if s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
			// Valid
		default:
			return false
		}
	}
	return true
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	// Validate SampleRate is in range [0.0, 1.0]
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	// Validate Exporter is a valid option
	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate endpoint requirements when tracing is enabled.
	// An empty file_path falls back to DefaultTracesFilePath at startup.
	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}

	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Rollcall Configuration

# Path to the registration CSV file (default: registrations.csv in the
# current directory). The file is created with its header row on first use.
# data_file: /path/to/registrations.csv

# Reload registrations when the CSV file changes on disk
auto_refresh: true

# Verbose logging (equivalent to ROLLCALL_DEBUG=1)
# debug: true

# UI settings
ui:
  show_status_bar: true    # Show status bar at bottom
  show_timestamps: false   # Show timestamps next to chat messages
  # markdown_style: dark   # Markdown rendering style: "dark" (default) or "light"

# Theme configuration
theme:
  # Force light or dark rendering. Empty uses terminal detection.
  # mode: dark
  #
  # Override the accent color used for highlights and the status bar:
  # accent: "#7D56F4"

# Distributed tracing configuration
# Emits spans around every store operation and MCP tool call
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/rollcall/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
#
# Example: Enable tracing with file export
# tracing:
#   enabled: true
#   exporter: file
#   file_path: ~/.config/rollcall/traces/traces.jsonl
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	// Create parent directory if needed
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Write the template
	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
