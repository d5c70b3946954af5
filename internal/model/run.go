package model

import "time"

// StepStatus represents the lifecycle state of one step during a run.
//
// Valid transitions are Waiting -> Running -> Completed|Failed and
// Waiting -> Skipped. There is no transition out of a terminal state.
type StepStatus string

const (
	// StepStatusWaiting is the initial state of every declared step.
	StepStatusWaiting StepStatus = "waiting"
	// StepStatusRunning means the step's process is executing.
	StepStatusRunning StepStatus = "running"
	// StepStatusCompleted means the step's process exited with code 0.
	StepStatusCompleted StepStatus = "completed"
	// StepStatusFailed means the step could not run or exited non zero.
	StepStatusFailed StepStatus = "failed"
	// StepStatusSkipped means the step was excluded by platform filtering.
	StepStatusSkipped StepStatus = "skipped"
)

// Terminal reports whether the status is final.
func (s StepStatus) Terminal() bool {
	return s == StepStatusCompleted || s == StepStatusFailed || s == StepStatusSkipped
}

// StepState is the observable lifecycle record for one step during one run.
// It is owned by the execution loop; everyone else sees copies.
type StepState struct {
	Task           string
	Index          int
	Repo           string
	DisplayCommand string
	Status         StepStatus
	StartedAt      *time.Time
	EndedAt        *time.Time
	Stdout         string
	Stderr         string
	ExitCode       *int
	// Reason holds the failure reason, empty unless Status is failed.
	Reason string
}

// Clone returns a deep copy of the state.
func (s StepState) Clone() StepState {
	c := s
	if s.StartedAt != nil {
		t := *s.StartedAt
		c.StartedAt = &t
	}
	if s.EndedAt != nil {
		t := *s.EndedAt
		c.EndedAt = &t
	}
	if s.ExitCode != nil {
		code := *s.ExitCode
		c.ExitCode = &code
	}
	return c
}
