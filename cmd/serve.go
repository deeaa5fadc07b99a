package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"rollcall/internal/config"
	"rollcall/internal/log"
	"rollcall/internal/mcp"
	"rollcall/internal/registration"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP registration server on stdio",
	Long: `Run the registration system as an MCP server speaking JSON-RPC 2.0 over
newline-delimited stdin/stdout. An AI client connects to the process and
drives the store through five tools: add_registration,
get_all_registrations, search_registrations, get_registration_statistics,
and validate_registration_data.

stdout carries the protocol, so debug logs always go to a file.

Example:
  rollcall serve
  rollcall serve --data /srv/registrations.csv
  ROLLCALL_DEBUG=1 rollcall serve    # debug log in debug.log`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cleanup := initLogging("rollcall-serve")
	defer cleanup()

	provider, err := initTracing()
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	dataPath := resolveDataPath()
	store, err := registration.New(dataPath, registration.WithTracer(provider.Tracer()))
	if err != nil {
		return fmt.Errorf("opening registration store at %s: %w", dataPath, err)
	}

	server := mcp.NewRegistrationServer(store, version, mcp.WithTracer(provider.Tracer()))

	log.Info(log.CatMCP, "MCP server starting", "data", dataPath, "version", version)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// Serve in background; the loop ends on stdin EOF
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(os.Stdin, os.Stdout)
	}()

	select {
	case sig := <-sigCh:
		log.Info(log.CatMCP, "Received signal, shutting down", "signal", sig.String())
		server.Stop()
	case err := <-errCh:
		server.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
