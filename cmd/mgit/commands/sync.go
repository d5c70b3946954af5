package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/mgit-dev/mgit/internal/app/gitops"
	"github.com/mgit-dev/mgit/internal/model"
)

type SyncCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewSyncCommand returns the sync command.
func NewSyncCommand(rootCmd *RootCommand, app *kingpin.Application) *SyncCommand {
	c := &SyncCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("sync", "Pull then push every repository.")

	return c
}

func (c SyncCommand) Name() string { return c.Cmd.FullCommand() }

func (c SyncCommand) Run(ctx context.Context) error {
	return runGitOp(ctx, c.rootCmd, "sync", func(svc *gitops.Service) []model.OpResult {
		return svc.Sync(ctx)
	})
}
