package model

// ScriptType enumerates how a step command is launched.
type ScriptType string

const (
	// ScriptTypeNone means the type is inferred from the command's file extension.
	ScriptTypeNone ScriptType = ""
	// ScriptTypeShell launches through the configured POSIX shell.
	ScriptTypeShell ScriptType = "shell"
	// ScriptTypeBatch launches through the configured batch interpreter.
	ScriptTypeBatch ScriptType = "batch"
	// ScriptTypeCmd is an alias of batch.
	ScriptTypeCmd ScriptType = "cmd"
	// ScriptTypePowerShell launches through PowerShell.
	ScriptTypePowerShell ScriptType = "powershell"
	// ScriptTypeExecutable launches the command directly.
	ScriptTypeExecutable ScriptType = "executable"
)

// Task is a named, ordered list of steps. Tasks are immutable for the
// duration of a run.
type Task struct {
	Name  string `yaml:"name" json:"name"`
	Steps []Step `yaml:"steps" json:"steps"`
}

// Step is one declared unit of work inside a task: a command bound to a
// repository, with an optional script type and platform constraint.
type Step struct {
	ScriptType ScriptType `yaml:"type,omitempty" json:"type,omitempty"`
	Platform   string     `yaml:"platform,omitempty" json:"platform,omitempty"`
	Repo       string     `yaml:"repo" json:"repo"`
	Cmd        string     `yaml:"cmd" json:"cmd"`
	Args       []string   `yaml:"args,omitempty" json:"args,omitempty"`
}

// Repository is one managed repository declared in the configuration.
type Repository struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// RepoRef is a repository name already resolved to its working directory.
type RepoRef struct {
	Name string
	Path string
}
