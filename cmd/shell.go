package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bnema/nlsh/internal/application"
	"github.com/bnema/nlsh/internal/domain"
)

func newShellCmd(app *app) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive loop: describe, review, run",
		Long:  "shell reads one request per line, suggests a command, and runs it after confirmation. Type exit or press Ctrl-D to leave.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := app.openSessionLog(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			return runShell(cmd, app, log)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Continue a stored session")

	return cmd
}

func runShell(cmd *cobra.Command, app *app, log *application.SessionLog) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	lines := bufio.NewScanner(cmd.InOrStdin())

	_, _ = fmt.Fprintf(out, "nlsh session %s\n", log.ID())
	for {
		_, _ = fmt.Fprint(out, "nlsh> ")
		if !lines.Scan() {
			_, _ = fmt.Fprintln(out)
			return lines.Err()
		}

		prompt := strings.TrimSpace(lines.Text())
		switch prompt {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		command, err := app.suggestWithRecovery(ctx, cmd, prompt, log)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			printError(cmd.ErrOrStderr(), err, app.verbose())
			continue
		}

		app.recordAppend(ctx, log, prompt, command)
		_, _ = fmt.Fprintf(out, "  %s\n", command)

		if !confirm(out, lines, "Run it? [y/N] ") {
			continue
		}
		if err := app.runAndRecord(cmd, log, command); err != nil {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}
}

// suggestWithRecovery logs in again when the identity is gone and retries
// once after a rejected service token.
func (a *app) suggestWithRecovery(ctx context.Context, cmd *cobra.Command, prompt string, log *application.SessionLog) (string, error) {
	identityToken, err := a.identity.IdentityToken(ctx)
	if errors.Is(err, domain.ErrNotLoggedIn) {
		if identityToken, err = a.relogin(cmd); err != nil {
			return "", err
		}
	} else if err != nil {
		return "", err
	}

	suggest := func(token string) (string, error) {
		var command string
		err := a.withSpinner(ctx, cmd.ErrOrStderr(), "Asking Copilot...", func(ctx context.Context) error {
			var suggestErr error
			command, suggestErr = a.suggestions.Suggest(ctx, prompt, token, log)
			return suggestErr
		})
		return command, err
	}

	command, err := suggest(identityToken)
	switch {
	case errors.Is(err, domain.ErrIdentityExpired):
		if identityToken, err = a.relogin(cmd); err != nil {
			return "", err
		}
		return suggest(identityToken)
	case errors.Is(err, domain.ErrServiceTokenExpired):
		a.logger.Debug("service token rejected, retrying once")
		return suggest(identityToken)
	default:
		return command, err
	}
}

func (a *app) relogin(cmd *cobra.Command) (string, error) {
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "GitHub login required.")
	if err := runLogin(cmd, a); err != nil {
		return "", err
	}
	return a.identity.IdentityToken(cmd.Context())
}

func confirm(out io.Writer, lines *bufio.Scanner, question string) bool {
	_, _ = fmt.Fprint(out, question)
	if !lines.Scan() {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(lines.Text())) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
