package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	statusadapter "github.com/bnema/nlsh/internal/adapters/render/status"
)

func newAuthCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect stored credentials",
	}

	cmd.AddCommand(newAuthStatusCmd(app))

	return cmd
}

func newAuthStatusCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether GitHub and Copilot tokens are stored",
		RunE: func(cmd *cobra.Command, _ []string) error {
			output, err := statusadapter.Render(app.identity.Status(cmd.Context()), statusadapter.RenderOptions{
				Now:     app.now(),
				Backend: app.cfg.Credentials.Backend,
				Dir:     app.cfg.Dir,
			})
			if err != nil {
				return fmt.Errorf("render auth status: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), output)
			return err
		},
	}
}
