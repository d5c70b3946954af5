package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/mgit-dev/mgit/internal/app/scan"
)

type InitCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	dir   string
	force bool
}

// NewInitCommand returns the init command.
func NewInitCommand(rootCmd *RootCommand, app *kingpin.Application) *InitCommand {
	c := &InitCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("init", "Scan a directory for git repositories and write a project configuration.")
	c.Cmd.Arg("dir", "Directory to scan.").Default(".").StringVar(&c.dir)
	c.Cmd.Flag("force", "Overwrite an existing configuration file.").BoolVar(&c.force)

	return c
}

func (c InitCommand) Name() string { return c.Cmd.FullCommand() }

func (c InitCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	git, err := c.rootCmd.GitClient()
	if err != nil {
		return err
	}

	svc, err := scan.NewService(scan.ServiceConfig{Git: git, Logger: logger})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	report, err := svc.Init(ctx, scan.InitOptions{Dir: c.dir, Force: c.force})
	if err != nil {
		return fmt.Errorf("could not initialize project: %w", err)
	}

	fmt.Fprintf(c.rootCmd.Stdout, "Wrote %s with %d repositories\n", report.Path, len(report.Repositories))
	return nil
}
