package scan

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mgit-dev/mgit/internal/config"
	"github.com/mgit-dev/mgit/internal/gitx"
	"github.com/mgit-dev/mgit/internal/log"
	"github.com/mgit-dev/mgit/internal/model"
)

// ServiceConfig is the configuration for the project scan service.
type ServiceConfig struct {
	Git    gitx.Client
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Git == nil {
		return fmt.Errorf("git client is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Scan"})
	return nil
}

// Service bootstraps a project configuration by scanning a directory for git
// repositories.
type Service struct {
	git    gitx.Client
	logger log.Logger
}

// NewService creates a new scan service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{git: cfg.Git, logger: cfg.Logger}, nil
}

// InitOptions are the options for initializing a project.
type InitOptions struct {
	// Dir is the directory to scan, its direct children are probed.
	Dir string
	// Force overwrites an existing configuration file.
	Force bool
}

// InitReport describes what Init produced.
type InitReport struct {
	// Path is the written configuration file.
	Path string
	// Repositories are the discovered git repositories.
	Repositories []model.Repository
}

// Init scans the direct children of a directory for git repositories and
// writes a fresh project configuration listing them.
func (s *Service) Init(ctx context.Context, opts InitOptions) (*InitReport, error) {
	dir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve directory: %w", err)
	}

	for _, name := range config.FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil && !opts.Force {
			return nil, fmt.Errorf("configuration %s: %w", path, model.ErrAlreadyExists)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read directory: %w", err)
	}

	var repos []model.Repository
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if !s.git.IsRepository(path) {
			continue
		}

		// A repository without a remote is still tracked.
		url, err := s.git.RemoteURL(path)
		if err != nil {
			s.logger.Warningf("Repository %s has no usable origin remote: %s", entry.Name(), err)
		}

		repos = append(repos, model.Repository{Name: entry.Name(), URL: url})
		s.logger.Debugf("Discovered repository %s", entry.Name())
	}

	cfg := config.Config{Repositories: repos}
	path := filepath.Join(dir, config.FileNames[0])
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("could not write configuration: %w", err)
	}

	s.logger.Infof("Initialized project with %d repositories at %s", len(repos), path)
	return &InitReport{Path: path, Repositories: repos}, nil
}
