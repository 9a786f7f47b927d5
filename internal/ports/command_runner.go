package ports

import "context"

type CommandRunner interface {
	Run(ctx context.Context, command string) (output string, err error)
}
