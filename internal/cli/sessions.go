package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"ai-terminal/internal/app"
	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/model"
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"s"},
	Short:   "Manage saved chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *app.Client) error {
			printSessions(cmd.OutOrStdout(), client.Terminal.Sessions(), activeID(client.Terminal))
			return nil
		})
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <ref>",
	Short: "Print a session transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *app.Client) error {
			session, err := findSession(client.Terminal.Sessions(), args[0])
			if err != nil {
				return err
			}
			printTranscript(cmd.OutOrStdout(), session)
			return nil
		})
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:     "delete <ref>",
	Aliases: []string{"rm"},
	Short:   "Delete a session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd, func(ctx context.Context, client *app.Client) error {
			session, err := findSession(client.Terminal.Sessions(), args[0])
			if err != nil {
				return err
			}
			if err := client.Terminal.DeleteSession(session.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q.\n", session.Title)
			return nil
		})
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// findSession resolves a 1-based list position, a full id or a unique id prefix.
func findSession(sessions []model.Session, ref string) (model.Session, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(sessions) {
			return model.Session{}, fmt.Errorf("%w: no session number %d", app_errors.ErrNotFound, n)
		}
		return sessions[n-1], nil
	}

	var matches []model.Session
	for _, s := range sessions {
		if s.ID == ref {
			return s, nil
		}
		if strings.HasPrefix(strings.ToLower(s.ID), strings.ToLower(ref)) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return model.Session{}, fmt.Errorf("%w: no session matches %q", app_errors.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return model.Session{}, fmt.Errorf("%w: %q matches %d sessions", app_errors.ErrConflict, ref, len(matches))
	}
}

func printSessions(w io.Writer, sessions []model.Session, active string) {
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\t#\tID\tTITLE\tMESSAGES\tUPDATED")
	for i, s := range sessions {
		marker := ""
		if s.ID == active {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\t%s\n",
			marker, i+1, s.ID, s.Title, len(s.Messages), s.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	_ = tw.Flush()
}

func printTranscript(w io.Writer, session model.Session) {
	fmt.Fprintln(w, color.New(color.Bold).Sprint(session.Title))
	if len(session.Messages) == 0 {
		fmt.Fprintln(w, color.HiBlackString("(empty)"))
		return
	}
	for _, m := range session.Messages {
		label := color.CyanString("assistant>")
		if m.Role == model.RoleUser {
			label = color.GreenString("you>")
		}
		fmt.Fprintf(w, "%s %s\n", label, m.Content)
	}
}
