package repostatus

import (
	"context"
	"errors"
	"fmt"

	"github.com/mgit-dev/mgit/internal/gitx"
	"github.com/mgit-dev/mgit/internal/log"
	"github.com/mgit-dev/mgit/internal/model"
	"github.com/mgit-dev/mgit/internal/storage"
)

// Project is the slice of the project configuration the service needs.
type Project interface {
	RepoRefs() []model.RepoRef
}

// ServiceConfig is the configuration for the repository status service.
type ServiceConfig struct {
	Project    Project
	Git        gitx.Client
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Project == nil {
		return fmt.Errorf("project is required")
	}
	if c.Git == nil {
		return fmt.Errorf("git client is required")
	}
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.RepoStatus"})
	return nil
}

// Service reports the state of the project's repositories, serving reads from
// the state cache and refreshing it from the working trees on demand.
type Service struct {
	project Project
	git     gitx.Client
	repo    storage.Repository
	logger  log.Logger
}

// NewService creates a new repository status service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		project: cfg.Project,
		git:     cfg.Git,
		repo:    cfg.Repository,
		logger:  cfg.Logger,
	}, nil
}

// Status returns the state of every declared repository in declaration order.
// Cached states are used when available, repositories never seen before are
// read live and cached. With refresh set every repository is read live.
func (s *Service) Status(ctx context.Context, refresh bool) ([]model.RepoState, error) {
	cached := map[string]model.RepoState{}
	if !refresh {
		states, err := s.repo.ListRepoStates(ctx)
		if err != nil {
			return nil, fmt.Errorf("could not list cached states: %w", err)
		}
		for _, state := range states {
			cached[state.Name] = state
		}
	}

	var result []model.RepoState
	for _, ref := range s.project.RepoRefs() {
		if state, ok := cached[ref.Name]; ok {
			result = append(result, state)
			continue
		}

		state, err := s.read(ctx, ref)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				s.logger.Warningf("Repository %s has no working tree, skipping", ref.Name)
				continue
			}
			return nil, err
		}
		result = append(result, *state)
	}

	return result, nil
}

// Refresh re-reads every declared repository and rewrites the cache.
func (s *Service) Refresh(ctx context.Context) ([]model.RepoState, error) {
	return s.Status(ctx, true)
}

func (s *Service) read(ctx context.Context, ref model.RepoRef) (*model.RepoState, error) {
	if !s.git.IsRepository(ref.Path) {
		// Drop any stale cache entry for a removed working tree.
		if err := s.repo.DeleteRepoState(ctx, ref.Name); err != nil && !errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("could not drop stale state: %w", err)
		}
		return nil, fmt.Errorf("repository %s: %w", ref.Name, model.ErrNotFound)
	}

	state, err := s.git.State(ref.Path, ref.Name)
	if err != nil {
		return nil, fmt.Errorf("could not read repository %s: %w", ref.Name, err)
	}

	if err := s.repo.SaveRepoState(ctx, *state); err != nil {
		return nil, fmt.Errorf("could not cache state of %s: %w", ref.Name, err)
	}

	s.logger.Debugf("Refreshed state of repository %s", ref.Name)
	return state, nil
}
