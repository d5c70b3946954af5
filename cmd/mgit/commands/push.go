package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/mgit-dev/mgit/internal/app/gitops"
	"github.com/mgit-dev/mgit/internal/model"
)

type PushCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewPushCommand returns the push command.
func NewPushCommand(rootCmd *RootCommand, app *kingpin.Application) *PushCommand {
	c := &PushCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("push", "Publish every repository's current branch to its origin.")

	return c
}

func (c PushCommand) Name() string { return c.Cmd.FullCommand() }

func (c PushCommand) Run(ctx context.Context) error {
	return runGitOp(ctx, c.rootCmd, "push", func(svc *gitops.Service) []model.OpResult {
		return svc.Push(ctx)
	})
}
