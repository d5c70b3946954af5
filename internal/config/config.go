package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mgit-dev/mgit/internal/engine"
	"github.com/mgit-dev/mgit/internal/model"
)

// Config file names probed when discovering the project configuration, in
// order of preference.
var FileNames = []string{".mgitconfig.yaml", ".mgitconfig.yml", ".mgitconfig.json"}

// ShellsConfig is the optional interpreter override map.
type ShellsConfig struct {
	Shell      string `yaml:"shell,omitempty" json:"shell,omitempty"`
	Batch      string `yaml:"batch,omitempty" json:"batch,omitempty"`
	PowerShell string `yaml:"powershell,omitempty" json:"powershell,omitempty"`
}

// Config is the project configuration: the repository registry, the declared
// tasks, the interpreter overrides and the saved branch tags.
type Config struct {
	Repositories []model.Repository           `yaml:"repositories" json:"repositories"`
	Tasks        []model.Task                 `yaml:"tasks,omitempty" json:"tasks,omitempty"`
	Shells       ShellsConfig                 `yaml:"shells,omitempty" json:"shells,omitempty"`
	Tags         map[string]map[string]string `yaml:"tags,omitempty" json:"tags,omitempty"`

	// dir is the directory holding the config file, repositories live as its
	// direct children.
	dir string
	// path is the file the config was loaded from.
	path string
}

// Find walks up from startDir looking for a project configuration file.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("could not resolve %q: %w", startDir, err)
	}

	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("project configuration: %w", model.ErrNotFound)
		}
		dir = parent
	}
}

// Load reads, parses and validates the configuration at path. The format is
// chosen by file extension, YAML unless the file ends in .json.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not parse config: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("could not resolve config path: %w", err)
	}
	cfg.dir = filepath.Dir(abs)
	cfg.path = abs

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to path, in the format chosen by extension.
func (c *Config) Save(path string) error {
	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = json.MarshalIndent(c, "", "  ")
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("could not serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}
	return nil
}

// Dir returns the project directory, the one holding the config file.
func (c *Config) Dir() string { return c.dir }

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// Tag returns the saved branch positions under the given tag name.
func (c *Config) Tag(name string) (map[string]string, error) {
	branches, ok := c.Tags[name]
	if !ok {
		return nil, fmt.Errorf("tag %q: %w", name, model.ErrNotFound)
	}
	return branches, nil
}

// SetTag stores branch positions under the given tag name and persists the
// configuration file.
func (c *Config) SetTag(name string, branches map[string]string) error {
	if c.Tags == nil {
		c.Tags = map[string]map[string]string{}
	}
	c.Tags[name] = branches
	return c.Save(c.path)
}

// RepoPath resolves a repository name to its working directory. It is the
// repository registry consumed by the task engine: an unknown name or a
// missing directory is a configuration error, caught before any step runs.
func (c *Config) RepoPath(name string) (string, error) {
	if _, err := c.Repository(name); err != nil {
		return "", err
	}

	path := filepath.Join(c.dir, name)
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return "", fmt.Errorf("repository directory %q: %w", path, model.ErrNotFound)
	}
	return path, nil
}

// Repository returns the declared repository with the given name.
func (c *Config) Repository(name string) (*model.Repository, error) {
	for i := range c.Repositories {
		if c.Repositories[i].Name == name {
			return &c.Repositories[i], nil
		}
	}
	return nil, fmt.Errorf("repository %q: %w", name, model.ErrNotFound)
}

// RepoRefs returns every declared repository resolved to its directory,
// without checking existence.
func (c *Config) RepoRefs() []model.RepoRef {
	refs := make([]model.RepoRef, 0, len(c.Repositories))
	for _, r := range c.Repositories {
		refs = append(refs, model.RepoRef{Name: r.Name, Path: filepath.Join(c.dir, r.Name)})
	}
	return refs
}

// Task returns the declared task with the given name.
func (c *Config) Task(name string) (*model.Task, error) {
	for i := range c.Tasks {
		if c.Tasks[i].Name == name {
			return &c.Tasks[i], nil
		}
	}
	return nil, fmt.Errorf("task %q: %w", name, model.ErrNotFound)
}

// EngineShells maps the interpreter overrides to the engine's form.
func (c *Config) EngineShells() engine.Shells {
	return engine.Shells{
		Shell:      c.Shells.Shell,
		Batch:      c.Shells.Batch,
		PowerShell: c.Shells.PowerShell,
	}
}

var validScriptTypes = map[model.ScriptType]bool{
	model.ScriptTypeNone:       true,
	model.ScriptTypeShell:      true,
	model.ScriptTypeBatch:      true,
	model.ScriptTypeCmd:        true,
	model.ScriptTypePowerShell: true,
	model.ScriptTypeExecutable: true,
}

// validate surfaces configuration errors at load time: duplicate names,
// dangling repository references, unknown platform tokens and unknown script
// types never reach a run.
func (c *Config) validate() error {
	repos := map[string]bool{}
	for _, r := range c.Repositories {
		if r.Name == "" {
			return fmt.Errorf("repository with empty name: %w", model.ErrNotValid)
		}
		if repos[r.Name] {
			return fmt.Errorf("duplicated repository %q: %w", r.Name, model.ErrNotValid)
		}
		repos[r.Name] = true
	}

	tasks := map[string]bool{}
	for _, t := range c.Tasks {
		if t.Name == "" {
			return fmt.Errorf("task with empty name: %w", model.ErrNotValid)
		}
		if tasks[t.Name] {
			return fmt.Errorf("duplicated task %q: %w", t.Name, model.ErrNotValid)
		}
		tasks[t.Name] = true

		for i, step := range t.Steps {
			if step.Cmd == "" {
				return fmt.Errorf("task %q step %d: empty cmd: %w", t.Name, i+1, model.ErrNotValid)
			}
			if !repos[step.Repo] {
				return fmt.Errorf("task %q step %d: unknown repository %q: %w", t.Name, i+1, step.Repo, model.ErrNotValid)
			}
			if !validScriptTypes[step.ScriptType] {
				return fmt.Errorf("task %q step %d: unknown script type %q: %w", t.Name, i+1, step.ScriptType, model.ErrNotValid)
			}
			if _, err := engine.ParsePlatforms(step.Platform); err != nil {
				return fmt.Errorf("task %q step %d: %w", t.Name, i+1, err)
			}
		}
	}

	return nil
}
