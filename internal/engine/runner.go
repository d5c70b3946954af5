package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/run"
	"github.com/oklog/ulid/v2"

	"github.com/mgit-dev/mgit/internal/log"
	"github.com/mgit-dev/mgit/internal/model"
)

// RepoResolver maps a step's repository name to its working directory.
type RepoResolver interface {
	RepoPath(name string) (string, error)
}

// RunnerConfig is the configuration for a task runner.
type RunnerConfig struct {
	Task     model.Task
	Registry RepoResolver
	Vars     *VarContext
	Shells   Shells
	// Executor defaults to a real process executor.
	Executor Executor
	// Out receives the live progress table.
	Out io.Writer
	// Platform defaults to the current OS's token.
	Platform       string
	RenderInterval time.Duration
	// StepTimeout is optional and off by default. When set, a step whose
	// process outlives it is killed and recorded as failed with a timeout
	// reason; subsequent steps still run.
	StepTimeout time.Duration
	Logger      log.Logger
}

func (c *RunnerConfig) defaults() error {
	if c.Task.Name == "" {
		return fmt.Errorf("task name is required")
	}
	if c.Registry == nil {
		return fmt.Errorf("repository registry is required")
	}
	if c.Vars == nil {
		return fmt.Errorf("variable context is required")
	}
	if c.Out == nil {
		return fmt.Errorf("out is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "engine.Runner"})
	if c.Executor == nil {
		c.Executor = NewProcessExecutor(c.Logger)
	}
	if c.Platform == "" {
		c.Platform = CurrentPlatform()
	}
	return nil
}

// Runner drives one task run: a sequential execution goroutine and a render
// goroutine sharing the state store. Steps run strictly one at a time, in
// declaration order; a failed step never stops the run, most build tasks
// proceed independently of each other.
type Runner struct {
	cfg    RunnerConfig
	logger log.Logger
}

// NewRunner creates a new task runner.
func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Runner{cfg: cfg, logger: cfg.Logger}, nil
}

// Result is the outcome of one full task run.
type Result struct {
	RunID      string
	Task       string
	StartedAt  time.Time
	FinishedAt time.Time
	Steps      []model.StepState
}

// Failed returns the failed steps in declaration order.
func (r *Result) Failed() []model.StepState {
	var failed []model.StepState
	for _, st := range r.Steps {
		if st.Status == model.StepStatusFailed {
			failed = append(failed, st)
		}
	}
	return failed
}

// OK reports whether every declared, non skipped step completed.
func (r *Result) OK() bool {
	for _, st := range r.Steps {
		if st.Status != model.StepStatusCompleted && st.Status != model.StepStatusSkipped {
			return false
		}
	}
	return true
}

// preparedStep is a step with its variables expanded, its repository
// resolved to a working directory and its platform eligibility decided.
type preparedStep struct {
	index    int
	step     model.Step
	cmd      string
	args     []string
	workDir  string
	eligible bool
}

// prepare expands and validates every step up front. Any error here is a
// configuration error: the run aborts before the progress table is drawn and
// no step ever enters Running.
func (r *Runner) prepare() ([]preparedStep, error) {
	prepared := make([]preparedStep, 0, len(r.cfg.Task.Steps))
	for i, step := range r.cfg.Task.Steps {
		cmd, err := r.cfg.Vars.Expand(step.Cmd)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Repo, err)
		}
		args, err := r.cfg.Vars.ExpandAll(step.Args)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Repo, err)
		}
		workDir, err := r.cfg.Registry.RepoPath(step.Repo)
		if err != nil {
			return nil, fmt.Errorf("step %d: could not resolve repository %q: %w", i+1, step.Repo, err)
		}
		platforms, err := ParsePlatforms(step.Platform)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Repo, err)
		}

		prepared = append(prepared, preparedStep{
			index:    i,
			step:     step,
			cmd:      cmd,
			args:     args,
			workDir:  workDir,
			eligible: EligibleOn(platforms, r.cfg.Platform),
		})
	}
	return prepared, nil
}

// Run executes the whole task and returns its result. The returned error
// covers configuration and infrastructure failures only; step failures are
// reported through the result.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	prepared, err := r.prepare()
	if err != nil {
		return nil, err
	}

	runID := ulid.Make().String()
	logger := r.logger.WithValues(log.Kv{"run-id": runID, "task": r.cfg.Task.Name})

	store := NewStateStore(r.cfg.Task)
	for _, p := range prepared {
		r.mark(logger, p.index, store.SetDisplayCommand(p.index, DisplayCommand(p.cmd, p.args)))
	}

	renderer, err := NewRenderer(RendererConfig{
		Store:    store,
		Out:      r.cfg.Out,
		TaskName: r.cfg.Task.Name,
		Interval: r.cfg.RenderInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create renderer: %w", err)
	}

	startedAt := time.Now()
	logger.Debugf("Starting run with %d steps", len(prepared))

	// Two concurrent actors share the state store: the sequential execution
	// loop (sole writer) and the renderer (snapshot reader). The execution
	// actor closes stop once every step is terminal; the renderer paints a
	// final frame on stop, so the last frame shown is consistent.
	var g run.Group

	stop := make(chan struct{})
	var stopOnce sync.Once
	stopRender := func() { stopOnce.Do(func() { close(stop) }) }

	{
		g.Add(
			func() error {
				return renderer.Loop(stop)
			},
			func(_ error) {
				stopRender()
			},
		)
	}

	{
		execCtx, execCancel := context.WithCancel(ctx)
		g.Add(
			func() error {
				defer stopRender()
				r.executeAll(execCtx, logger, prepared, store)
				return nil
			},
			func(_ error) {
				execCancel()
			},
		)
	}

	if err := g.Run(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:      runID,
		Task:       r.cfg.Task.Name,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Steps:      store.Snapshot(),
	}
	logger.Debugf("Run finished, success: %t", result.OK())

	return result, nil
}

// executeAll is the sequential execution loop: a fold over the step sequence
// that leaves every visited step in a terminal state. Step N+1 never starts
// before step N is terminal.
func (r *Runner) executeAll(ctx context.Context, logger log.Logger, prepared []preparedStep, store *StateStore) {
	for _, p := range prepared {
		if ctx.Err() != nil {
			logger.Warningf("Run cancelled before step %d", p.index+1)
			return
		}

		if !p.eligible {
			logger.Debugf("Step %d (%s) not eligible on %s, skipping", p.index+1, p.step.Repo, r.cfg.Platform)
			r.mark(logger, p.index, store.MarkSkipped(p.index))
			continue
		}

		r.mark(logger, p.index, store.MarkRunning(p.index))

		launch, err := ResolveLaunch(p.step.ScriptType, p.cmd, p.args, p.workDir, r.cfg.Shells)
		if err != nil {
			r.mark(logger, p.index, store.MarkFailed(p.index, nil, err))
			continue
		}

		stepCtx := ctx
		cancel := func() {}
		if r.cfg.StepTimeout > 0 {
			stepCtx, cancel = context.WithTimeout(ctx, r.cfg.StepTimeout)
		}

		res, err := r.cfg.Executor.Exec(stepCtx, launch, p.workDir)
		cancel()

		switch {
		case err == nil:
			r.mark(logger, p.index, store.MarkCompleted(p.index, res))
		case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			r.mark(logger, p.index, store.MarkFailed(p.index, res, &TimeoutError{After: r.cfg.StepTimeout}))
		default:
			r.mark(logger, p.index, store.MarkFailed(p.index, res, err))
		}
	}
}

func (r *Runner) mark(logger log.Logger, index int, err error) {
	if err != nil {
		logger.Errorf("State transition for step %d failed: %v", index+1, err)
	}
}
