package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/mgit-dev/mgit/internal/app/taskexec"
)

type RunCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	task     string
	defines  []string
	timeout  time.Duration
	interval time.Duration
}

// NewRunCommand returns the run command.
func NewRunCommand(rootCmd *RootCommand, app *kingpin.Application) *RunCommand {
	c := &RunCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("run", "Run a declared task across the project's repositories.")
	c.Cmd.Arg("task", "Name of the task to run.").Required().StringVar(&c.task)
	c.Cmd.Flag("define", "Define a variable as NAME=VALUE, repeatable.").Short('D').StringsVar(&c.defines)
	c.Cmd.Flag("timeout", "Per step execution time limit, disabled when zero.").DurationVar(&c.timeout)
	c.Cmd.Flag("interval", "Progress repaint period.").Default("100ms").DurationVar(&c.interval)

	return c
}

func (c RunCommand) Name() string { return c.Cmd.FullCommand() }

func (c RunCommand) Run(ctx context.Context) error {
	cfg, err := c.rootCmd.LoadProject()
	if err != nil {
		return err
	}

	svc, err := taskexec.NewService(taskexec.ServiceConfig{
		Project: cfg,
		Out:     c.rootCmd.Stdout,
		ErrOut:  c.rootCmd.Stderr,
		Logger:  c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	result, err := svc.Run(ctx, taskexec.RunOptions{
		Task:           c.task,
		Defines:        c.defines,
		StepTimeout:    c.timeout,
		RenderInterval: c.interval,
	})
	if err != nil {
		return fmt.Errorf("could not run task: %w", err)
	}

	if !result.OK() {
		return fmt.Errorf("%d step(s) failed", len(result.Failed()))
	}

	return nil
}
