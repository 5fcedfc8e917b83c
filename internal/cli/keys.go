package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ai-terminal/internal/app"
	"ai-terminal/internal/model"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage provider API keys",
	Long: `API keys are kept in the local store and only leave this machine inside a
request to the relay.`,
}

var keysSetCmd = &cobra.Command{
	Use:   "set <provider>",
	Short: "Store the API key for a provider",
	Long: `Store the API key for a provider. On a terminal the key is read without
echo; otherwise the first line of stdin is used.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := readKey(cmd, model.Provider(args[0]))
		if err != nil {
			return err
		}
		if key == "" {
			return fmt.Errorf("no key given; use 'aiterm keys clear %s' to remove one", args[0])
		}
		return withClient(cmd, func(ctx context.Context, client *app.Client) error {
			if err := client.Terminal.SettingsService().SetAPIKey(ctx, model.Provider(args[0]), key); err != nil {
				return err
			}
			client.Terminal.DismissError()
			fmt.Fprintf(cmd.OutOrStdout(), "Saved the %s key.\n", args[0])
			return nil
		})
	},
}

var keysClearCmd = &cobra.Command{
	Use:   "clear <provider>",
	Short: "Remove the API key for a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *app.Client) error {
			if err := client.Terminal.SettingsService().SetAPIKey(ctx, model.Provider(args[0]), ""); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed the %s key.\n", args[0])
			return nil
		})
	},
}

func init() {
	keysCmd.AddCommand(keysSetCmd, keysClearCmd)
	rootCmd.AddCommand(keysCmd)
}

func readKey(cmd *cobra.Command, p model.Provider) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s API key: ", p)
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read key: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}
	return readLine(in)
}

func readLine(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("failed to read key: %w", err)
	}
	return strings.TrimSpace(line), nil
}
