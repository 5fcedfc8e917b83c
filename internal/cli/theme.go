package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ai-terminal/internal/app"
	"ai-terminal/internal/model"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show or change the colour theme used by the web front end",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *app.Client) error {
			theme, err := client.Terminal.SettingsService().Theme(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), theme)
			return nil
		})
	},
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available themes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, theme := range model.Themes {
			fmt.Fprintln(cmd.OutOrStdout(), theme)
		}
	},
}

var themeSetCmd = &cobra.Command{
	Use:   "set <theme>",
	Short: "Save a theme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *app.Client) error {
			return client.Terminal.SettingsService().SetTheme(ctx, model.Theme(args[0]))
		})
	},
}

var themeResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the saved theme",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *app.Client) error {
			return client.Terminal.SettingsService().ResetTheme(ctx)
		})
	},
}

func init() {
	themeCmd.AddCommand(themeListCmd, themeSetCmd, themeResetCmd)
	rootCmd.AddCommand(themeCmd)
}
