package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgit-dev/mgit/internal/config"
	"github.com/mgit-dev/mgit/internal/model"
)

const validYAML = `
repositories:
  - name: api
    url: git@example.com:org/api.git
  - name: web
    url: git@example.com:org/web.git
tasks:
  - name: build
    steps:
      - repo: api
        cmd: make
        args: ["build"]
      - repo: web
        cmd: build.sh
        platform: linux,macos
shells:
  shell: /bin/bash
tags:
  release-1:
    api: release/1.x
`

const validJSON = `{
  "repositories": [{"name": "api", "url": "https://example.com/api.git"}],
  "tasks": [{"name": "test", "steps": [{"repo": "api", "cmd": "make", "args": ["test"]}]}]
}`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	tests := map[string]struct {
		fileName string
		content  string
		expErr   bool
		check    func(t *testing.T, cfg *config.Config)
	}{
		"A valid YAML config should load": {
			fileName: ".mgitconfig.yaml",
			content:  validYAML,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Len(t, cfg.Repositories, 2)
				assert.Len(t, cfg.Tasks, 1)
				assert.Equal(t, "/bin/bash", cfg.Shells.Shell)
				assert.Equal(t, "release/1.x", cfg.Tags["release-1"]["api"])

				task, err := cfg.Task("build")
				require.NoError(t, err)
				assert.Len(t, task.Steps, 2)
				assert.Equal(t, "linux,macos", task.Steps[1].Platform)
			},
		},

		"A valid JSON config should load": {
			fileName: ".mgitconfig.json",
			content:  validJSON,
			check: func(t *testing.T, cfg *config.Config) {
				assert.Len(t, cfg.Repositories, 1)
				_, err := cfg.Task("test")
				assert.NoError(t, err)
			},
		},

		"A step referencing an unknown repository should fail at load time": {
			fileName: ".mgitconfig.yaml",
			content: `
repositories:
  - name: api
    url: u
tasks:
  - name: build
    steps:
      - repo: ghost
        cmd: make
`,
			expErr: true,
		},

		"A step with an unknown platform token should fail at load time": {
			fileName: ".mgitconfig.yaml",
			content: `
repositories:
  - name: api
    url: u
tasks:
  - name: build
    steps:
      - repo: api
        cmd: make
        platform: solaris
`,
			expErr: true,
		},

		"A step with an unknown script type should fail at load time": {
			fileName: ".mgitconfig.yaml",
			content: `
repositories:
  - name: api
    url: u
tasks:
  - name: build
    steps:
      - repo: api
        cmd: make
        type: python
`,
			expErr: true,
		},

		"Duplicated repositories should fail at load time": {
			fileName: ".mgitconfig.yaml",
			content: `
repositories:
  - name: api
    url: u
  - name: api
    url: u2
`,
			expErr: true,
		},

		"Broken YAML should fail": {
			fileName: ".mgitconfig.yaml",
			content:  "repositories: [",
			expErr:   true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeConfig(t, dir, test.fileName, test.content)

			cfg, err := config.Load(path)

			if test.expErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, dir, cfg.Dir())
			test.check(t, cfg)
		})
	}
}

func TestFind(t *testing.T) {
	assert := assert.New(t)

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	path := writeConfig(t, root, ".mgitconfig.yaml", validYAML)

	// Discovery walks up from a nested directory.
	found, err := config.Find(nested)
	require.NoError(t, err)
	assert.Equal(path, found)

	// Nothing to find in an isolated tree.
	_, err = config.Find(t.TempDir())
	assert.ErrorIs(err, model.ErrNotFound)
}

func TestRepoPath(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "api"), 0o755))
	path := writeConfig(t, dir, ".mgitconfig.yaml", validYAML)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	// A declared repo with an existing directory resolves.
	got, err := cfg.RepoPath("api")
	require.NoError(t, err)
	assert.Equal(filepath.Join(dir, "api"), got)

	// A declared repo without a directory is a configuration error.
	_, err = cfg.RepoPath("web")
	assert.ErrorIs(err, model.ErrNotFound)

	// An undeclared repo is a configuration error.
	_, err = cfg.RepoPath("ghost")
	assert.ErrorIs(err, model.ErrNotFound)
}

func TestSaveRoundTrip(t *testing.T) {
	assert := assert.New(t)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "api"), 0o755))
	path := writeConfig(t, dir, ".mgitconfig.yaml", validYAML)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	cfg.Tags["release-2"] = map[string]string{"api": "release/2.x"}
	require.NoError(t, cfg.Save(path))

	reloaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal("release/2.x", reloaded.Tags["release-2"]["api"])
	assert.Len(reloaded.Repositories, 2)
}
