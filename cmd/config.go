package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/nlsh/internal/config"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the nlsh configuration file",
	}

	cmd.AddCommand(newConfigInitCmd(app), newConfigPathCmd(app))

	return cmd
}

func newConfigInitCmd(app *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to config.toml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := app.cfg.ConfigFile()
			if err := config.Write(path, config.Default(), force); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

func newConfigPathCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where nlsh reads and stores its files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "config: %s\nsessions: %s\ncredentials: %s (%s)\n",
				app.cfg.ConfigFile(), app.cfg.SessionsDir(), app.cfg.Credentials.Backend, app.cfg.Dir)
			return err
		},
	}
}
