package taskexec_test

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgit-dev/mgit/internal/app/taskexec"
	"github.com/mgit-dev/mgit/internal/engine"
	"github.com/mgit-dev/mgit/internal/model"
)

type testProject struct {
	dir   string
	tasks map[string]model.Task
	repos map[string]string
}

func (p testProject) Dir() string { return p.dir }

func (p testProject) Task(name string) (*model.Task, error) {
	task, ok := p.tasks[name]
	if !ok {
		return nil, fmt.Errorf("task %q: %w", name, model.ErrNotFound)
	}
	return &task, nil
}

func (p testProject) RepoPath(name string) (string, error) {
	path, ok := p.repos[name]
	if !ok {
		return "", fmt.Errorf("repository %q: %w", name, model.ErrNotFound)
	}
	return path, nil
}

func (p testProject) EngineShells() engine.Shells { return engine.Shells{} }

func shellStep(repo, cmd string) model.Step {
	return model.Step{ScriptType: model.ScriptTypeShell, Repo: repo, Cmd: cmd}
}

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}

	project := testProject{
		dir: t.TempDir(),
		tasks: map[string]model.Task{
			"build": {Name: "build", Steps: []model.Step{
				shellStep("api", "true"),
				shellStep("api", "exit 7"),
			}},
		},
		repos: map[string]string{"api": t.TempDir()},
	}

	tests := map[string]struct {
		opts   taskexec.RunOptions
		expErr bool
		check  func(t *testing.T, result *engine.Result, errOut string)
	}{
		"Running a declared task should execute every step and report failures": {
			opts: taskexec.RunOptions{Task: "build"},
			check: func(t *testing.T, result *engine.Result, errOut string) {
				assert.False(t, result.OK())
				require.Len(t, result.Steps, 2)
				assert.Equal(t, model.StepStatusCompleted, result.Steps[0].Status)
				assert.Equal(t, model.StepStatusFailed, result.Steps[1].Status)
				assert.Contains(t, errOut, "exit code 7")
			},
		},

		"Running an unknown task should fail": {
			opts:   taskexec.RunOptions{Task: "ghost"},
			expErr: true,
		},

		"An invalid variable definition should fail before anything runs": {
			opts:   taskexec.RunOptions{Task: "build", Defines: []string{"broken"}},
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			svc, err := taskexec.NewService(taskexec.ServiceConfig{
				Project: project,
				Out:     &out,
				ErrOut:  &errOut,
			})
			require.NoError(t, err)

			result, err := svc.Run(context.TODO(), test.opts)

			if test.expErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			test.check(t, result, errOut.String())
		})
	}
}
