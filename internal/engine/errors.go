package engine

import (
	"fmt"
	"time"
)

// UndefinedVariableError is returned when a variable reference names a
// variable absent from every layer of the context. It is a configuration
// error: it aborts the whole run before any step executes.
type UndefinedVariableError struct {
	Name string
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("undefined variable: %s", e.Name)
}

// InvalidDefinitionError is returned when a user supplied -D definition is
// not of the form NAME=VALUE. It is a configuration error.
type InvalidDefinitionError struct {
	Definition string
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("invalid variable definition %q, expected NAME=VALUE", e.Definition)
}

// UnclosedReferenceError is returned when a $( or ${ reference has no
// terminator. It is a configuration error.
type UnclosedReferenceError struct {
	Ref string
}

func (e *UnclosedReferenceError) Error() string {
	return fmt.Sprintf("unclosed variable reference: %s", e.Ref)
}

// ScriptNotFoundError is returned when a step's command names a script file
// that does not exist in the repository. It fails the single step only.
type ScriptNotFoundError struct {
	Path string
}

func (e *ScriptNotFoundError) Error() string {
	return fmt.Sprintf("script not found: %s", e.Path)
}

// SpawnError is returned when a step's process could not be started at all
// (missing binary, permission denied). It fails the single step only and is
// distinguishable from a non zero exit in the failure report.
type SpawnError struct {
	Cause error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("could not spawn process: %v", e.Cause)
}

func (e *SpawnError) Unwrap() error { return e.Cause }

// ExitCodeError is returned when a step's process ran and exited non zero.
type ExitCodeError struct {
	Code int
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// TimeoutError is returned when the optional per step timeout killed the
// step's process. Subsequent steps still run.
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s", e.After)
}
