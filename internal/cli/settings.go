package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ai-terminal/internal/app"
	"ai-terminal/internal/model"
	"ai-terminal/internal/service"
)

var modelCatalog = service.NewModelService()

var (
	settingsProvider string
	settingsModel    string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the provider and model",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *app.Client) error {
			printSettings(cmd.OutOrStdout(), client.Terminal.Settings())
			return nil
		})
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Select a provider and/or model",
	Long: `Select a provider and/or model. Changing the provider without --model
selects that provider's default model.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if settingsProvider == "" && settingsModel == "" {
			return fmt.Errorf("nothing to change: pass --provider and/or --model")
		}
		return withClient(cmd, func(ctx context.Context, client *app.Client) error {
			t := client.Terminal
			if settingsProvider != "" {
				if err := t.SettingsService().SelectProvider(ctx, model.Provider(settingsProvider)); err != nil {
					return err
				}
			}
			if settingsModel != "" {
				settings := t.Settings()
				settings.Model = settingsModel
				if err := t.UpdateSettings(ctx, settings); err != nil {
					return err
				}
			}
			printSelection(cmd.OutOrStdout(), t.Settings())
			return nil
		})
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models [provider]",
	Short: "List the models each provider offers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			names, err := modelCatalog.Models(model.Provider(args[0]))
			if err != nil {
				return err
			}
			for _, m := range names {
				fmt.Fprintln(out, m)
			}
			return nil
		}
		for _, pm := range modelCatalog.List() {
			fmt.Fprintln(out, color.New(color.Bold).Sprint(pm.Provider))
			for _, m := range pm.Models {
				fmt.Fprintf(out, "  %s\n", m)
			}
		}
		return nil
	},
}

func init() {
	settingsSetCmd.Flags().StringVarP(&settingsProvider, "provider", "p", "", "Provider: openai, anthropic or deepseek")
	settingsSetCmd.Flags().StringVarP(&settingsModel, "model", "m", "", "Model name from the provider's catalog")
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd, modelsCmd)
}

func printSettings(w io.Writer, settings model.Settings) {
	fmt.Fprintf(w, "provider: %s\n", settings.Provider)
	fmt.Fprintf(w, "model:    %s\n", settings.Model)
	fmt.Fprintln(w, "keys:")
	for _, p := range model.Providers {
		state := color.HiBlackString("not set")
		if key := settings.APIKeys[p]; key != "" {
			state = color.GreenString("set (%s)", maskKey(key))
		}
		fmt.Fprintf(w, "  %-10s %s\n", p, state)
	}
}

func printModels(w io.Writer, settings model.Settings) {
	names, err := modelCatalog.Models(settings.Provider)
	if err != nil {
		printError(w, err)
		return
	}
	for _, m := range names {
		marker := " "
		if m == settings.Model {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %s\n", marker, m)
	}
}

// maskKey keeps only the last four characters of a key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}
