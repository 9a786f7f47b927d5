package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/bnema/nlsh/internal/ports"
)

var _ ports.CommandRunner = Runner{}

// Runner executes suggested commands through a POSIX shell and captures
// combined stdout and stderr.
type Runner struct {
	Shell string
	Dir   string
	Env   []string
}

func (r Runner) Run(ctx context.Context, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if command == "" {
		return "", errors.New("command is required")
	}

	shell := r.Shell
	if shell == "" {
		shell = "/bin/sh"
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = r.Env
	}

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return output.String(), fmt.Errorf("run command: %w", err)
	}
	return output.String(), nil
}
