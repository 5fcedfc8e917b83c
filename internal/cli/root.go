package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ai-terminal/internal/app"
	"ai-terminal/internal/config"
)

var (
	verbose   bool
	relayURL  string
	local     bool
	storePath string
	version   = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "aiterm",
	Short: "Chat with OpenAI, Anthropic or DeepSeek models from the terminal",
	Long: `aiterm keeps multi-session chat history in a local store and streams
replies through a relay that forwards each request to the selected provider.

Quick Start:
  aiterm keys set openai         # Store an API key
  aiterm chat                    # Start an interactive session
  aiterm chat "hello there"      # Ask a single question
  aiterm sessions list           # Show saved sessions`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&relayURL, "relay", "", "Relay base URL (overrides RELAY_URL)")
	rootCmd.PersistentFlags().BoolVar(&local, "local", false, "Call providers directly through an in-process relay")
	rootCmd.PersistentFlags().StringVar(&storePath, "store", "", "Path to the SQLite local store (overrides STORE_PATH)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// loadConfig reads configuration and applies the persistent flag overrides.
// Logs go to stderr at WARN unless --verbose is set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	level := "WARN"
	if verbose {
		level = "DEBUG"
	}
	cfg, err := app.Bootstrap(cmd.ErrOrStderr(), level)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if relayURL != "" {
		cfg.RelayURL = relayURL
	}
	if local {
		cfg.RelayURL = ""
	}
	if storePath != "" {
		cfg.StorePath = storePath
	}
	return cfg, nil
}

// withClient opens the terminal client, runs fn and flushes the store.
func withClient(cmd *cobra.Command, fn func(ctx context.Context, client *app.Client) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	client, err := app.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	runErr := fn(ctx, client)

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Close(closeCtx); err != nil && runErr == nil {
		return fmt.Errorf("failed to save local store: %w", err)
	}
	return runErr
}
