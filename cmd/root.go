package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rollcall/internal/app"
	"rollcall/internal/cachemanager"
	"rollcall/internal/chat"
	"rollcall/internal/config"
	"rollcall/internal/log"
	"rollcall/internal/registration"
	"rollcall/internal/tracing"
	"rollcall/internal/ui/styles"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:     "rollcall",
	Short:   "A conversational registration system",
	Long:    `A chat-style terminal interface for registering users into a CSV-backed store, with list, search, and statistics commands and an MCP server for AI clients.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .rollcall.yaml, then $HOME/.rollcall.yaml)")
	rootCmd.PersistentFlags().StringP("data", "d", "",
		"path to the registration CSV file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write debug logs to file")
	rootCmd.Flags().Bool("no-auto-refresh", false,
		"disable reloading when the data file changes on disk")

	// Bind flags to viper
	_ = viper.BindPFlag("data_file", rootCmd.PersistentFlags().Lookup("data"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("data_file", defaults.DataFile)
	viper.SetDefault("auto_refresh", defaults.AutoRefresh)
	viper.SetDefault("debug", defaults.Debug)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.show_timestamps", defaults.UI.ShowTimestamps)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("theme.mode", defaults.Theme.Mode)
	viper.SetDefault("theme.accent", defaults.Theme.Accent)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	viper.SetEnvPrefix("ROLLCALL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .rollcall.yaml (current directory)
		// 2. ~/.rollcall.yaml (user config)
		if _, err := os.Stat(".rollcall.yaml"); err == nil {
			viper.SetConfigFile(".rollcall.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(home)
			viper.SetConfigName(".rollcall")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create a commented default in cwd
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".rollcall.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// initLogging wires the debug log file when debug mode is on, via flag,
// config, or ROLLCALL_DEBUG. Returns a cleanup that closes the file.
func initLogging(prefix string) func() {
	if !debugFlag && !cfg.Debug && os.Getenv("ROLLCALL_DEBUG") == "" {
		return func() {}
	}

	logPath := os.Getenv("ROLLCALL_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}

	cleanup, err := log.InitWithTeaLog(logPath, prefix)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v\n", logPath, err)
		return func() {}
	}
	log.Info(log.CatConfig, "Logging initialized", "path", logPath, "prefix", prefix)
	return cleanup
}

// initTracing builds the tracing provider from config. Disabled tracing
// yields a provider with a noop tracer, so callers never nil-check.
func initTracing() (*tracing.Provider, error) {
	tc := tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
		ServiceName:  "rollcall",
	}
	if tc.FilePath == "" && tc.Exporter == "file" {
		tc.FilePath = config.DefaultTracesFilePath()
	}
	return tracing.NewProvider(tc)
}

// resolveDataPath returns the CSV path to use: flag/config value, or the
// default file in the current directory.
func resolveDataPath() string {
	if cfg.DataFile != "" {
		return cfg.DataFile
	}
	return config.DefaultDataFile
}

// configFilePath returns the loaded config file, or the cwd default when
// none was found (so UI toggles still have somewhere to persist).
func configFilePath() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}
	return ".rollcall.yaml"
}

func runApp(cmd *cobra.Command, args []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanup := initLogging("rollcall")
	defer cleanup()

	if err := styles.ApplyTheme(styles.ThemeConfig(cfg.Theme)); err != nil {
		return fmt.Errorf("applying theme: %w", err)
	}

	provider, err := initTracing()
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	// Handle --no-auto-refresh flag (negated logic)
	if noAutoRefresh, _ := cmd.Flags().GetBool("no-auto-refresh"); noAutoRefresh {
		cfg.AutoRefresh = false
	}

	dataPath := resolveDataPath()
	store, err := registration.New(dataPath, registration.WithTracer(provider.Tracer()))
	if err != nil {
		return fmt.Errorf("opening registration store at %s: %w", dataPath, err)
	}

	recordCache := cachemanager.NewInMemoryCacheManager[string, []registration.Record](
		"records", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)

	// Required before any zone.Mark/Scan call in the UI
	zone.NewGlobal()

	model := app.New(store, chat.NewDialogue(store), recordCache, cfg, configFilePath())
	p := tea.NewProgram(
		&model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	// Clean up watcher resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
