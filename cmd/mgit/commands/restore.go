package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/mgit-dev/mgit/internal/app/tags"
	"github.com/mgit-dev/mgit/internal/printer"
)

type RestoreCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	tag string
}

// NewRestoreCommand returns the restore command.
func NewRestoreCommand(rootCmd *RootCommand, app *kingpin.Application) *RestoreCommand {
	c := &RestoreCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("restore", "Check out the branches saved under a tag. The reserved names main and master restore default branches.")
	c.Cmd.Arg("tag", "Tag name.").Required().StringVar(&c.tag)

	return c
}

func (c RestoreCommand) Name() string { return c.Cmd.FullCommand() }

func (c RestoreCommand) Run(ctx context.Context) error {
	cfg, err := c.rootCmd.LoadProject()
	if err != nil {
		return err
	}

	git, err := c.rootCmd.GitClient()
	if err != nil {
		return err
	}

	svc, err := tags.NewService(tags.ServiceConfig{
		Project: cfg,
		Git:     git,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	results, err := svc.Restore(ctx, c.tag)
	if err != nil {
		return fmt.Errorf("could not restore tag: %w", err)
	}

	p := printer.NewTablePrinter(c.rootCmd.Stdout)
	if err := p.PrintOpResults("branch", results); err != nil {
		return fmt.Errorf("could not print results: %w", err)
	}

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("restore failed for %d repositories", failed)
	}

	return nil
}
