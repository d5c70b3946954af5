package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/mgit-dev/mgit/internal/config"
	"github.com/mgit-dev/mgit/internal/conventions"
	"github.com/mgit-dev/mgit/internal/gitx"
	"github.com/mgit-dev/mgit/internal/log"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug      bool
	NoLog      bool
	NoColor    bool
	LoggerType string
	ConfigPath string
	DBPath     string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)
	app.Flag("config", "Path to the project configuration file, discovered by walking up from the working directory when unset.").Envar("MGIT_CONFIG").StringVar(&c.ConfigPath)

	defaultDBPath := conventions.StateDBPath(homedir.HomeDir())
	app.Flag("db-path", "Path to the SQLite state cache file.").Envar("MGIT_DB_PATH").Default(defaultDBPath).StringVar(&c.DBPath)

	return c
}

// LoadProject loads the project configuration, either from the --config flag
// or by discovery from the working directory upwards.
func (c *RootCommand) LoadProject() (*config.Config, error) {
	path := c.ConfigPath
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not get working directory: %w", err)
		}
		path, err = config.Find(cwd)
		if err != nil {
			return nil, fmt.Errorf("could not find project configuration: %w", err)
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("could not load project configuration: %w", err)
	}
	return cfg, nil
}

// GitClient creates the git client used by the commands.
func (c *RootCommand) GitClient() (gitx.Client, error) {
	client, err := gitx.NewClient(gitx.ClientConfig{Logger: c.Logger})
	if err != nil {
		return nil, fmt.Errorf("could not create git client: %w", err)
	}
	return client, nil
}
