package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/mgit-dev/mgit/internal/app/tags"
)

type SaveCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	tag string
}

// NewSaveCommand returns the save command.
func NewSaveCommand(rootCmd *RootCommand, app *kingpin.Application) *SaveCommand {
	c := &SaveCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("save", "Save the current branch of every repository under a tag.")
	c.Cmd.Arg("tag", "Tag name.").Required().StringVar(&c.tag)

	return c
}

func (c SaveCommand) Name() string { return c.Cmd.FullCommand() }

func (c SaveCommand) Run(ctx context.Context) error {
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

	branches, err := svc.Save(ctx, c.tag)
	if err != nil {
		return fmt.Errorf("could not save tag: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Saved tag %q covering %d repositories\n", c.tag, len(branches))
	return nil
}
