package engine

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mgit-dev/mgit/internal/model"
)

// StateStore is the run state shared between the execution loop and the
// renderer. It is the only shared mutable resource of a run. Every public
// read returns an owned snapshot, so the lock is only ever held for the map
// copy and the status transitions, never across terminal or process I/O.
type StateStore struct {
	mu    sync.Mutex
	steps []model.StepState
}

// NewStateStore declares every step of the task as Waiting, so the very
// first rendered frame already shows the full task.
func NewStateStore(task model.Task) *StateStore {
	steps := make([]model.StepState, len(task.Steps))
	for i, step := range task.Steps {
		steps[i] = model.StepState{
			Task:           task.Name,
			Index:          i,
			Repo:           step.Repo,
			DisplayCommand: DisplayCommand(step.Cmd, step.Args),
			Status:         model.StepStatusWaiting,
		}
	}
	return &StateStore{steps: steps}
}

// DisplayCommand is the human readable command line shown for a step.
func DisplayCommand(cmd string, args []string) string {
	if len(args) == 0 {
		return cmd
	}
	return cmd + " " + strings.Join(args, " ")
}

// Snapshot returns a deep copy of every step state. The copy is made under
// the lock; rendering happens on the copy with the lock released.
func (s *StateStore) Snapshot() []model.StepState {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := make([]model.StepState, len(s.steps))
	for i, st := range s.steps {
		snap[i] = st.Clone()
	}
	return snap
}

// Done reports whether every step reached a terminal state.
func (s *StateStore) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.steps {
		if !st.Status.Terminal() {
			return false
		}
	}
	return true
}

// SetDisplayCommand replaces the command shown for a step, used once
// variables have been expanded.
func (s *StateStore) SetDisplayCommand(i int, display string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.steps) {
		return fmt.Errorf("step index %d out of range: %w", i, model.ErrNotValid)
	}
	s.steps[i].DisplayCommand = display
	return nil
}

// MarkRunning transitions a step from Waiting to Running and stamps its
// start time.
func (s *StateStore) MarkRunning(i int) error {
	now := time.Now()
	return s.transition(i, model.StepStatusRunning, func(st *model.StepState) {
		st.StartedAt = &now
	})
}

// MarkSkipped transitions a step from Waiting to Skipped. Skipped steps are
// recorded, never silently omitted, so progress display and post-mortem
// accounting cover every declared step.
func (s *StateStore) MarkSkipped(i int) error {
	return s.transition(i, model.StepStatusSkipped, nil)
}

// MarkCompleted transitions a step from Running to Completed with its
// captured output.
func (s *StateStore) MarkCompleted(i int, res *ExecResult) error {
	now := time.Now()
	return s.transition(i, model.StepStatusCompleted, func(st *model.StepState) {
		st.EndedAt = &now
		applyResult(st, res)
	})
}

// MarkFailed transitions a step from Running to Failed with the failure
// reason and whatever output was captured. res may be nil when the process
// never started.
func (s *StateStore) MarkFailed(i int, res *ExecResult, reason error) error {
	now := time.Now()
	return s.transition(i, model.StepStatusFailed, func(st *model.StepState) {
		st.EndedAt = &now
		st.Reason = reason.Error()
		applyResult(st, res)
	})
}

func applyResult(st *model.StepState, res *ExecResult) {
	if res == nil {
		return
	}
	st.Stdout = res.Stdout
	st.Stderr = res.Stderr
	code := res.ExitCode
	st.ExitCode = &code
}

// validTransitions encodes the step state machine. There is no transition
// out of a terminal state.
var validTransitions = map[model.StepStatus][]model.StepStatus{
	model.StepStatusWaiting: {model.StepStatusRunning, model.StepStatusSkipped},
	model.StepStatusRunning: {model.StepStatusCompleted, model.StepStatusFailed},
}

func (s *StateStore) transition(i int, to model.StepStatus, mutate func(*model.StepState)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i < 0 || i >= len(s.steps) {
		return fmt.Errorf("step index %d out of range: %w", i, model.ErrNotValid)
	}

	st := &s.steps[i]
	allowed := false
	for _, next := range validTransitions[st.Status] {
		if next == to {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("invalid step transition %s -> %s: %w", st.Status, to, model.ErrNotValid)
	}

	st.Status = to
	if mutate != nil {
		mutate(st)
	}
	return nil
}
