package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/mgit-dev/mgit/internal/app/repostatus"
	"github.com/mgit-dev/mgit/internal/storage/sqlite"
)

type RefreshCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand
}

// NewRefreshCommand returns the refresh command.
func NewRefreshCommand(rootCmd *RootCommand, app *kingpin.Application) *RefreshCommand {
	c := &RefreshCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("refresh", "Re-read every repository and rewrite the state cache.")

	return c
}

func (c RefreshCommand) Name() string { return c.Cmd.FullCommand() }

func (c RefreshCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	cfg, err := c.rootCmd.LoadProject()
	if err != nil {
		return err
	}

	git, err := c.rootCmd.GitClient()
	if err != nil {
		return err
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	svc, err := repostatus.NewService(repostatus.ServiceConfig{
		Project:    cfg,
		Git:        git,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	states, err := svc.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("could not refresh: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Refreshed %d repositories\n", len(states))
	return nil
}
