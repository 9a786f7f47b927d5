package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	sessionrender "github.com/bnema/nlsh/internal/adapters/render/session"
)

func newSessionCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and delete stored sessions",
	}

	cmd.AddCommand(newSessionListCmd(app), newSessionShowCmd(app), newSessionDeleteCmd(app))

	return cmd
}

func newSessionListCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sessions, err := app.sessions.List(cmd.Context())
			if err != nil {
				return err
			}

			output, err := sessionrender.RenderList(sessions)
			if err != nil {
				return fmt.Errorf("render sessions: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}
}

func newSessionShowCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show every entry of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.sessions.GetByID(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("show session %s: %w", args[0], err)
			}

			output, err := sessionrender.RenderSession(session)
			if err != nil {
				return fmt.Errorf("render session: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}
}

func newSessionDeleteCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.sessions.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete session %s: %w", args[0], err)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Deleted session %s\n", args[0])
			return err
		},
	}
}
