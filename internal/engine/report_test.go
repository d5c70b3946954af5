package engine

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgit-dev/mgit/internal/model"
)

func TestWriteFailureReport(t *testing.T) {
	exitCode := 2

	tests := map[string]struct {
		result      Result
		expEmpty    bool
		expContains []string
		expMissing  []string
	}{
		"A run without failures should emit nothing": {
			result: Result{Task: "build", Steps: []model.StepState{
				{Repo: "api", Status: model.StepStatusCompleted},
				{Repo: "web", Status: model.StepStatusSkipped},
			}},
			expEmpty: true,
		},

		"A failed step should be reported with its captured streams": {
			result: Result{Task: "build", Steps: []model.StepState{
				{Repo: "api", Status: model.StepStatusCompleted, Stdout: "fine\n"},
				{
					Repo:           "web",
					Status:         model.StepStatusFailed,
					DisplayCommand: "build.sh --fast",
					Reason:         "exit code 2",
					Stdout:         "compiling\n",
					Stderr:         "linker error\n",
					ExitCode:       &exitCode,
				},
			}},
			expContains: []string{
				"1 failed step(s)",
				"Repo:    web",
				"Command: build.sh --fast",
				"Reason:  exit code 2",
				"captured stdout:",
				"compiling",
				"captured stderr:",
				"linker error",
			},
			// Output of successful steps never leaks into the report.
			expMissing: []string{"fine", "api"},
		},

		"A failure without output should skip the stream sections": {
			result: Result{Task: "build", Steps: []model.StepState{
				{Repo: "cli", Status: model.StepStatusFailed, DisplayCommand: "missing.sh", Reason: "script not found: missing.sh"},
			}},
			expContains: []string{"Repo:    cli", "script not found"},
			expMissing:  []string{"captured stdout:", "captured stderr:"},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)

			var out bytes.Buffer
			err := WriteFailureReport(&out, &test.result)
			require.NoError(t, err)

			if test.expEmpty {
				assert.Empty(out.String())
				return
			}

			for _, s := range test.expContains {
				assert.Contains(out.String(), s)
			}
			for _, s := range test.expMissing {
				assert.NotContains(out.String(), s)
			}
		})
	}
}
