package taskexec

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mgit-dev/mgit/internal/engine"
	"github.com/mgit-dev/mgit/internal/log"
	"github.com/mgit-dev/mgit/internal/model"
)

// Project is the slice of the project configuration the service needs.
type Project interface {
	Dir() string
	Task(name string) (*model.Task, error)
	RepoPath(name string) (string, error)
	EngineShells() engine.Shells
}

// ServiceConfig is the configuration for the task execution service.
type ServiceConfig struct {
	Project Project
	// Executor runs step processes, a real process executor unless overridden.
	Executor engine.Executor
	// Out receives the live progress table.
	Out io.Writer
	// ErrOut receives the failure report once the run finishes.
	ErrOut io.Writer
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Project == nil {
		return fmt.Errorf("project is required")
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	if c.ErrOut == nil {
		c.ErrOut = os.Stderr
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.TaskExec"})
	return nil
}

// Service runs declared tasks across the project's repositories.
type Service struct {
	project  Project
	executor engine.Executor
	out      io.Writer
	errOut   io.Writer
	logger   log.Logger
}

// NewService creates a new task execution service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		project:  cfg.Project,
		executor: cfg.Executor,
		out:      cfg.Out,
		errOut:   cfg.ErrOut,
		logger:   cfg.Logger,
	}, nil
}

// RunOptions are the options for running a task.
type RunOptions struct {
	// Task is the name of the declared task to run.
	Task string
	// Defines are NAME=VALUE variable definitions from the command line.
	Defines []string
	// StepTimeout bounds each step's execution, zero means no limit.
	StepTimeout time.Duration
	// RenderInterval overrides the progress repaint period.
	RenderInterval time.Duration
}

// Run executes a declared task step by step, painting progress to the
// configured output and reporting failures once finished. The returned result
// is non nil whenever the run started, even if some steps failed.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*engine.Result, error) {
	task, err := s.project.Task(opts.Task)
	if err != nil {
		return nil, fmt.Errorf("could not get task: %w", err)
	}

	vars, err := engine.NewVarContext(s.project.Dir(), opts.Defines)
	if err != nil {
		return nil, fmt.Errorf("could not create variable context: %w", err)
	}

	runner, err := engine.NewRunner(engine.RunnerConfig{
		Task:           *task,
		Registry:       s.project,
		Vars:           vars,
		Shells:         s.project.EngineShells(),
		Executor:       s.executor,
		Out:            s.out,
		RenderInterval: opts.RenderInterval,
		StepTimeout:    opts.StepTimeout,
		Logger:         s.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create runner: %w", err)
	}

	result, err := runner.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not run task: %w", err)
	}

	if err := engine.WriteFailureReport(s.errOut, result); err != nil {
		return nil, fmt.Errorf("could not write failure report: %w", err)
	}

	s.logger.Infof("Task %s finished, %d steps", task.Name, len(result.Steps))
	return result, nil
}
