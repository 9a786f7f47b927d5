package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/nlsh/internal/domain"
)

func newLoginCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Authorize nlsh with your GitHub account",
		Long:  "login runs the GitHub device flow: open the printed URL, enter the code, and nlsh stores the resulting token.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, app)
		},
	}
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored GitHub and Copilot tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.identity.Logout(cmd.Context()); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return err
		},
	}
}

func runLogin(cmd *cobra.Command, app *app) error {
	_, err := app.identity.Login(cmd.Context(), func(code domain.DeviceCode) {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Open %s and enter code %s\n", code.VerificationURI, code.UserCode)
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Waiting for authorization...")
	})
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
	return err
}
