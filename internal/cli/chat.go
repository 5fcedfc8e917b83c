package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ai-terminal/internal/app"
	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/model"
	"ai-terminal/internal/service"
)

var chatSession string

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the selected model",
	Long: `Without arguments chat starts an interactive prompt. With a message it sends
that one turn, prints the reply and exits. Each run starts a new session
unless --session names one to continue.

Type /help at the prompt for the session commands.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *app.Client) error {
			t := client.Terminal
			out := cmd.OutOrStdout()
			if err := client.CheckRelay(ctx); err != nil {
				slog.WarnContext(ctx, "Relay is not reachable yet", "error", err)
			}
			t.Subscribe(streamPrinter(out))

			if chatSession != "" {
				session, err := findSession(t.Sessions(), chatSession)
				if err != nil {
					return err
				}
				if err := t.SetActiveSession(session.ID); err != nil {
					return err
				}
			}
			if len(args) > 0 {
				return ask(ctx, t, strings.Join(args, " "))
			}
			return repl(ctx, t, cmd.InOrStdin(), out)
		})
	},
}

func init() {
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "", "Continue a session by number or id")
	rootCmd.AddCommand(chatCmd)
}

// streamPrinter writes reply deltas as they arrive.
func streamPrinter(w io.Writer) service.Observer {
	return func(ev service.Event) {
		switch ev.State {
		case service.StateSubmitted:
			fmt.Fprint(w, color.CyanString("assistant> "))
		case service.StateStreaming:
			fmt.Fprint(w, ev.Delta)
		case service.StateCommitted, service.StateFailed:
			fmt.Fprintln(w)
		}
	}
}

// ask submits one turn and blocks until it is committed or has failed.
// A failed turn is returned as its classified ChatError.
func ask(ctx context.Context, t *service.Terminal, text string) error {
	if err := t.Submit(ctx, text); err != nil {
		return err
	}
	if err := t.Wait(ctx); err != nil {
		return err
	}
	if chatErr := t.Error(); chatErr != nil {
		return chatErr
	}
	return nil
}

func repl(ctx context.Context, t *service.Terminal, in io.Reader, out io.Writer) error {
	settings := t.Settings()
	fmt.Fprintf(out, "%s %s\n", color.HiBlackString("%s/%s.", settings.Provider, settings.Model), color.HiBlackString("Type /help for commands."))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, color.GreenString("> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := runSlash(ctx, t, out, line)
			if err != nil {
				printError(out, err)
			}
			if quit {
				return nil
			}
			continue
		}

		if err := ask(ctx, t, line); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			printError(out, err)
		}
	}
}

const slashHelp = `/new               start a new session
/sessions          list sessions
/switch <ref>      switch to a session by number or id
/delete <ref>      delete a session
/history           show the active session
/provider <name>   select a provider and its default model
/model <name>      select a model of the current provider
/models            list models of the current provider
/dismiss           clear the last error
/quit              leave`

func runSlash(ctx context.Context, t *service.Terminal, out io.Writer, line string) (bool, error) {
	fields := strings.Fields(line)
	name, arg := fields[0], ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch name {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(out, slashHelp)
	case "/new":
		t.NewSession()
		fmt.Fprintln(out, color.GreenString("Started a new session."))
	case "/sessions":
		printSessions(out, t.Sessions(), activeID(t))
	case "/switch", "/delete":
		if arg == "" {
			return false, fmt.Errorf("%w: %s needs a session number or id", app_errors.ErrValidation, name)
		}
		session, err := findSession(t.Sessions(), arg)
		if err != nil {
			return false, err
		}
		if name == "/switch" {
			if err := t.SetActiveSession(session.ID); err != nil {
				return false, err
			}
			fmt.Fprintf(out, "Switched to %q.\n", session.Title)
			return false, nil
		}
		if err := t.DeleteSession(session.ID); err != nil {
			return false, err
		}
		fmt.Fprintf(out, "Deleted %q.\n", session.Title)
	case "/history":
		session, ok := t.ActiveSession()
		if !ok {
			fmt.Fprintln(out, "No active session.")
			return false, nil
		}
		printTranscript(out, session)
	case "/provider":
		if err := t.SettingsService().SelectProvider(ctx, model.Provider(arg)); err != nil {
			return false, err
		}
		t.DismissError()
		printSelection(out, t.Settings())
	case "/model":
		settings := t.Settings()
		settings.Model = arg
		if err := t.UpdateSettings(ctx, settings); err != nil {
			return false, err
		}
		printSelection(out, t.Settings())
	case "/models":
		printModels(out, t.Settings())
	case "/dismiss":
		t.DismissError()
	default:
		return false, fmt.Errorf("%w: unknown command %s", app_errors.ErrValidation, name)
	}
	return false, nil
}

func printError(w io.Writer, err error) {
	msg := err.Error()
	var chatErr *app_errors.ChatError
	if errors.As(err, &chatErr) {
		msg = chatErr.Message
	}
	fmt.Fprintln(w, color.RedString("Error: %s", msg))
}

func printSelection(w io.Writer, settings model.Settings) {
	fmt.Fprintf(w, "Using %s/%s.\n", settings.Provider, settings.Model)
}

func activeID(t *service.Terminal) string {
	session, ok := t.ActiveSession()
	if !ok {
		return ""
	}
	return session.ID
}
