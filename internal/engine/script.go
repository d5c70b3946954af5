package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mgit-dev/mgit/internal/model"
)

// Launch is the concrete strategy to start a step's process: the interpreter
// (or the command itself) plus the full argument list.
type Launch struct {
	Path string
	Args []string
}

// Shells is the interpreter override map supplied by the configuration.
// Zero values fall back to the platform defaults.
type Shells struct {
	Shell      string
	Batch      string
	PowerShell string
}

func (s Shells) shell() string {
	if s.Shell != "" {
		return s.Shell
	}
	return "sh"
}

func (s Shells) batch() string {
	if s.Batch != "" {
		return s.Batch
	}
	return "cmd"
}

func (s Shells) powerShell() string {
	if s.PowerShell != "" {
		return s.PowerShell
	}
	return "powershell"
}

// ResolveLaunch decides which interpreter to use and the invocation argument
// shape for a step whose command and arguments are already expanded.
//
// An explicit script type is used directly; this is the only way to run an
// ad-hoc command line (a command that is not a script file) through a shell.
// Without one, the type is inferred from the command's file extension; a
// command with no recognized extension is launched directly as an executable.
// A command inferred to be a script whose file does not exist in the
// repository fails with ScriptNotFoundError without starting a process.
func ResolveLaunch(scriptType model.ScriptType, cmd string, args []string, workDir string, shells Shells) (Launch, error) {
	explicit := scriptType != model.ScriptTypeNone
	if !explicit {
		scriptType = inferScriptType(cmd)
	}

	switch scriptType {
	case model.ScriptTypeShell:
		if scriptExists(workDir, cmd) {
			return Launch{Path: shells.shell(), Args: append([]string{cmd}, args...)}, nil
		}
		if explicit {
			// Ad-hoc command line, run through the shell.
			line := strings.Join(append([]string{cmd}, args...), " ")
			return Launch{Path: shells.shell(), Args: []string{"-c", line}}, nil
		}
		return Launch{}, &ScriptNotFoundError{Path: cmd}

	case model.ScriptTypeBatch, model.ScriptTypeCmd:
		if !explicit && !scriptExists(workDir, cmd) {
			return Launch{}, &ScriptNotFoundError{Path: cmd}
		}
		return Launch{Path: shells.batch(), Args: append([]string{"/C", cmd}, args...)}, nil

	case model.ScriptTypePowerShell:
		if !explicit && !scriptExists(workDir, cmd) {
			return Launch{}, &ScriptNotFoundError{Path: cmd}
		}
		// Bypass so default system execution policies cannot block the run.
		psArgs := append([]string{"-ExecutionPolicy", "Bypass", "-File", cmd}, args...)
		return Launch{Path: shells.powerShell(), Args: psArgs}, nil

	case model.ScriptTypeExecutable:
		return Launch{Path: cmd, Args: args}, nil

	default:
		return Launch{}, fmt.Errorf("unknown script type %q: %w", scriptType, model.ErrNotValid)
	}
}

// inferScriptType maps a command's file extension to a script type.
func inferScriptType(cmd string) model.ScriptType {
	switch strings.ToLower(filepath.Ext(cmd)) {
	case ".sh":
		return model.ScriptTypeShell
	case ".bat", ".cmd":
		return model.ScriptTypeBatch
	case ".ps1":
		return model.ScriptTypePowerShell
	case ".exe":
		return model.ScriptTypeExecutable
	default:
		return model.ScriptTypeExecutable
	}
}

func scriptExists(workDir, cmd string) bool {
	path := cmd
	if !filepath.IsAbs(path) {
		path = filepath.Join(workDir, path)
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
