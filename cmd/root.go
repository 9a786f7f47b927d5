package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bnema/nlsh/internal/domain"
)

func Execute() error {
	root := newRootCmd()
	err := root.Execute()
	if err != nil {
		printError(root.ErrOrStderr(), err, verboseRequested(root))
	}
	return err
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "nlsh",
		Short:         "Natural-language shell: turn requests into shell commands",
		Long:          "nlsh asks GitHub Copilot for the shell command that does what you describe, remembers the session so follow-up requests have context, and can run the command for you.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug details and show error causes")

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		if verbose {
			app.logLevel.Set(slog.LevelDebug)
		}
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newLogoutCmd(app),
		newAuthCmd(app),
		newAskCmd(app),
		newShellCmd(app),
		newSessionCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}

func verboseRequested(root *cobra.Command) bool {
	flag := root.PersistentFlags().Lookup("verbose")
	if flag != nil && flag.Value.String() == "true" {
		return true
	}
	enabled, _ := strconv.ParseBool(os.Getenv("NLSH_VERBOSE"))
	return enabled
}

// printError shows only the user-safe message unless verbose is set.
func printError(w io.Writer, err error, verbose bool) {
	var classified *domain.Error
	if errors.As(err, &classified) {
		if verbose {
			_, _ = fmt.Fprintln(w, "Error:", classified.Detail())
			return
		}
		_, _ = fmt.Fprintln(w, "Error:", classified.Error())
		return
	}
	_, _ = fmt.Fprintln(w, "Error:", err)
}
