package cli

import (
	"github.com/spf13/cobra"

	"ai-terminal/internal/app"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := ""
		if verbose {
			level = "DEBUG"
		}
		cfg, err := app.Bootstrap(cmd.ErrOrStderr(), level)
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.AppPort = servePort
		}
		return app.Serve(cmd.Context(), cfg)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides APP_PORT)")
	rootCmd.AddCommand(serveCmd)
}
