package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/mgit-dev/mgit/internal/app/gitops"
	"github.com/mgit-dev/mgit/internal/model"
)

type PullCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewPullCommand returns the pull command.
func NewPullCommand(rootCmd *RootCommand, app *kingpin.Application) *PullCommand {
	c := &PullCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("pull", "Fast-forward every repository from its origin.")

	return c
}

func (c PullCommand) Name() string { return c.Cmd.FullCommand() }

func (c PullCommand) Run(ctx context.Context) error {
	return runGitOp(ctx, c.rootCmd, "pull", func(svc *gitops.Service) []model.OpResult {
		return svc.Pull(ctx)
	})
}
