package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/nlsh/internal/application"
	"github.com/bnema/nlsh/internal/domain"
)

func newAskCmd(app *app) *cobra.Command {
	var run bool
	var sessionID string

	cmd := &cobra.Command{
		Use:   "ask <request...>",
		Short: "Suggest a shell command for a natural-language request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := app.openSessionLog(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			return runAsk(cmd, app, log, strings.Join(args, " "), run)
		},
	}

	cmd.Flags().BoolVar(&run, "run", false, "Execute the suggested command and record its output")
	cmd.Flags().StringVar(&sessionID, "session", "", "Continue a stored session so earlier requests give context")

	return cmd
}

func runAsk(cmd *cobra.Command, app *app, log *application.SessionLog, prompt string, run bool) error {
	ctx := cmd.Context()

	identityToken, err := app.identity.IdentityToken(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotLoggedIn) {
			return fmt.Errorf("%w: run `nlsh login` first", err)
		}
		return err
	}

	var command string
	err = app.withSpinner(ctx, cmd.ErrOrStderr(), "Asking Copilot...", func(ctx context.Context) error {
		var suggestErr error
		command, suggestErr = app.suggestions.Suggest(ctx, prompt, identityToken, log)
		return suggestErr
	})
	if err != nil {
		return err
	}

	app.recordAppend(ctx, log, prompt, command)
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), command); err != nil {
		return err
	}

	if !run {
		return nil
	}
	return app.runAndRecord(cmd, log, command)
}

func (a *app) openSessionLog(ctx context.Context, id string) (*application.SessionLog, error) {
	if id == "" {
		return a.newSessionLog(), nil
	}

	session, err := a.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open session %s: %w", id, err)
	}
	return application.ResumeSessionLog(session, a.sessions, a.clock, a.redact), nil
}

func (a *app) recordAppend(ctx context.Context, log *application.SessionLog, prompt string, command string) {
	if _, err := log.Append(ctx, prompt, domain.StringPtr(command), false); err != nil {
		a.logger.Warn("session not saved", "session", log.ID(), "error", err)
		return
	}
	a.logger.Debug("session saved", "session", log.ID())
}

// runAndRecord executes command and attaches its output to the latest entry.
// A non-zero exit still counts as executed.
func (a *app) runAndRecord(cmd *cobra.Command, log *application.SessionLog, command string) error {
	ctx := cmd.Context()

	output, runErr := a.runner.Run(ctx, command)
	if output != "" {
		_, _ = fmt.Fprint(cmd.OutOrStdout(), output)
	}

	if _, err := log.UpdateLast(ctx, nil, true, domain.StringPtr(output)); err != nil {
		a.logger.Warn("session not saved", "session", log.ID(), "error", err)
	}
	return runErr
}
