package engine

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgit-dev/mgit/internal/log"
	"github.com/mgit-dev/mgit/internal/model"
)

type testRegistry map[string]string

func (r testRegistry) RepoPath(name string) (string, error) {
	path, ok := r[name]
	if !ok {
		return "", fmt.Errorf("repository %q: %w", name, model.ErrNotFound)
	}
	return path, nil
}

func shellStep(repo, cmd string, args ...string) model.Step {
	return model.Step{ScriptType: model.ScriptTypeShell, Repo: repo, Cmd: cmd, Args: args}
}

func newTestRunner(t *testing.T, task model.Task, registry testRegistry, vars *VarContext, out *bytes.Buffer, timeout time.Duration) *Runner {
	t.Helper()

	if vars == nil {
		var err error
		vars, err = NewVarContext(t.TempDir(), nil)
		require.NoError(t, err)
	}

	runner, err := NewRunner(RunnerConfig{
		Task:           task,
		Registry:       registry,
		Vars:           vars,
		Out:            out,
		RenderInterval: 10 * time.Millisecond,
		StepTimeout:    timeout,
		Logger:         log.Noop,
	})
	require.NoError(t, err)
	return runner
}

func TestRunnerAllStepsSucceed(t *testing.T) {
	skipOnWindows(t)
	assert := assert.New(t)

	registry := testRegistry{"api": t.TempDir(), "web": t.TempDir(), "cli": t.TempDir()}
	task := model.Task{Name: "build", Steps: []model.Step{
		shellStep("api", "true"),
		shellStep("web", "echo", "done"),
		shellStep("cli", "exit", "0"),
	}}

	var out bytes.Buffer
	runner := newTestRunner(t, task, registry, nil, &out, 0)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.True(result.OK())
	assert.Empty(result.Failed())
	assert.NotEmpty(result.RunID)
	for _, st := range result.Steps {
		assert.Equal(model.StepStatusCompleted, st.Status)
		assert.NotNil(st.StartedAt)
		assert.NotNil(st.EndedAt)
	}
	// The final frame shows every step completed.
	assert.Contains(out.String(), "completed.")
}

func TestRunnerContinuesPastAFailedStep(t *testing.T) {
	skipOnWindows(t)
	assert := assert.New(t)

	registry := testRegistry{"api": t.TempDir(), "web": t.TempDir(), "cli": t.TempDir()}
	task := model.Task{Name: "build", Steps: []model.Step{
		shellStep("api", "echo", "a"),
		shellStep("web", "echo bad >&2; exit 1"),
		shellStep("cli", "echo", "c"),
	}}

	var out bytes.Buffer
	runner := newTestRunner(t, task, registry, nil, &out, 0)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.False(result.OK())

	require.Len(t, result.Steps, 3)
	assert.Equal(model.StepStatusCompleted, result.Steps[0].Status)
	assert.Equal(model.StepStatusFailed, result.Steps[1].Status)
	// The step after the failure still executed: never stuck at waiting.
	assert.Equal(model.StepStatusCompleted, result.Steps[2].Status)
	assert.Equal("c\n", result.Steps[2].Stdout)

	failed := result.Failed()
	require.Len(t, failed, 1)
	assert.Equal("web", failed[0].Repo)
	assert.Equal(1, *failed[0].ExitCode)
	assert.Equal("bad\n", failed[0].Stderr)
	assert.Equal("exit code 1", failed[0].Reason)
}

func TestRunnerUndefinedVariableAbortsBeforeExecution(t *testing.T) {
	assert := assert.New(t)

	registry := testRegistry{"api": t.TempDir()}
	task := model.Task{Name: "build", Steps: []model.Step{
		shellStep("api", "echo", "$(MISSING_VAR_FOR_SURE)"),
	}}

	var out bytes.Buffer
	runner := newTestRunner(t, task, registry, nil, &out, 0)

	result, err := runner.Run(context.Background())

	require.Error(t, err)
	var undefErr *UndefinedVariableError
	assert.ErrorAs(err, &undefErr)
	assert.Equal("MISSING_VAR_FOR_SURE", undefErr.Name)
	assert.Nil(result)
	// The run aborted before the progress table was drawn.
	assert.Empty(out.String())
}

func TestRunnerSkipsForeignPlatformSteps(t *testing.T) {
	skipOnWindows(t)
	assert := assert.New(t)

	registry := testRegistry{"api": t.TempDir(), "web": t.TempDir()}
	task := model.Task{Name: "build", Steps: []model.Step{
		{ScriptType: model.ScriptTypeShell, Repo: "api", Cmd: "true", Platform: "windows"},
		shellStep("web", "true"),
	}}

	var out bytes.Buffer
	runner := newTestRunner(t, task, registry, nil, &out, 0)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(model.StepStatusSkipped, result.Steps[0].Status)
	assert.Nil(result.Steps[0].StartedAt)
	assert.Equal(model.StepStatusCompleted, result.Steps[1].Status)
	// A skipped step does not affect overall success.
	assert.True(result.OK())
}

func TestRunnerUserDefinedVariableWinsOverEnvironment(t *testing.T) {
	skipOnWindows(t)
	assert := assert.New(t)

	t.Setenv("VERSION", "0.0.0")

	vars, err := NewVarContext(t.TempDir(), []string{"VERSION=1.2.3"})
	require.NoError(t, err)

	registry := testRegistry{"api": t.TempDir()}
	task := model.Task{Name: "release", Steps: []model.Step{
		shellStep("api", "echo", "$(VERSION)"),
	}}

	var out bytes.Buffer
	runner := newTestRunner(t, task, registry, vars, &out, 0)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal("1.2.3\n", result.Steps[0].Stdout)
}

func TestRunnerScriptNotFoundFailsOnlyTheStep(t *testing.T) {
	skipOnWindows(t)
	assert := assert.New(t)

	registry := testRegistry{"api": t.TempDir(), "web": t.TempDir()}
	task := model.Task{Name: "build", Steps: []model.Step{
		{Repo: "api", Cmd: "missing.sh"},
		shellStep("web", "true"),
	}}

	var out bytes.Buffer
	runner := newTestRunner(t, task, registry, nil, &out, 0)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(model.StepStatusFailed, result.Steps[0].Status)
	assert.Contains(result.Steps[0].Reason, "script not found")
	assert.Equal(model.StepStatusCompleted, result.Steps[1].Status)
	assert.False(result.OK())
}

func TestRunnerSpawnFailureIsDistinguishable(t *testing.T) {
	skipOnWindows(t)
	assert := assert.New(t)

	registry := testRegistry{"api": t.TempDir()}
	task := model.Task{Name: "build", Steps: []model.Step{
		{Repo: "api", Cmd: "definitely-not-a-binary-mgit-test"},
	}}

	var out bytes.Buffer
	runner := newTestRunner(t, task, registry, nil, &out, 0)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(model.StepStatusFailed, result.Steps[0].Status)
	assert.Contains(result.Steps[0].Reason, "could not spawn process")
}

func TestRunnerStepTimeout(t *testing.T) {
	skipOnWindows(t)
	assert := assert.New(t)

	registry := testRegistry{"api": t.TempDir(), "web": t.TempDir()}
	task := model.Task{Name: "build", Steps: []model.Step{
		shellStep("api", "sleep", "10"),
		shellStep("web", "true"),
	}}

	var out bytes.Buffer
	runner := newTestRunner(t, task, registry, nil, &out, 100*time.Millisecond)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(model.StepStatusFailed, result.Steps[0].Status)
	assert.Contains(result.Steps[0].Reason, "timed out after")
	// The step after the timeout still runs.
	assert.Equal(model.StepStatusCompleted, result.Steps[1].Status)
}

func TestRunnerUnresolvableRepoIsAConfigurationError(t *testing.T) {
	assert := assert.New(t)

	registry := testRegistry{}
	task := model.Task{Name: "build", Steps: []model.Step{shellStep("ghost", "true")}}

	var out bytes.Buffer
	runner := newTestRunner(t, task, registry, nil, &out, 0)

	result, err := runner.Run(context.Background())

	assert.Error(err)
	assert.ErrorIs(err, model.ErrNotFound)
	assert.Nil(result)
}
