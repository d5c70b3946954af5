package gitops

import (
	"context"
	"fmt"

	"github.com/mgit-dev/mgit/internal/gitx"
	"github.com/mgit-dev/mgit/internal/log"
	"github.com/mgit-dev/mgit/internal/model"
)

// Project is the slice of the project configuration the service needs.
type Project interface {
	RepoRefs() []model.RepoRef
}

// ServiceConfig is the configuration for the git operations service.
type ServiceConfig struct {
	Project Project
	Git     gitx.Client
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Project == nil {
		return fmt.Errorf("project is required")
	}
	if c.Git == nil {
		return fmt.Errorf("git client is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.GitOps"})
	return nil
}

// Service applies git network operations across every repository of the
// project. One repository failing never stops the others.
type Service struct {
	project Project
	git     gitx.Client
	logger  log.Logger
}

// NewService creates a new git operations service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		project: cfg.Project,
		git:     cfg.Git,
		logger:  cfg.Logger,
	}, nil
}

// Pull fast-forwards every repository from its origin.
func (s *Service) Pull(ctx context.Context) []model.OpResult {
	return s.each(ctx, "pull", s.git.Pull)
}

// Push publishes every repository's current branch to its origin.
func (s *Service) Push(ctx context.Context) []model.OpResult {
	return s.each(ctx, "push", s.git.Push)
}

// Sync pulls then pushes every repository. A repository whose pull failed is
// not pushed, publishing on top of an unknown remote state helps nobody.
func (s *Service) Sync(ctx context.Context) []model.OpResult {
	var results []model.OpResult
	for _, ref := range s.project.RepoRefs() {
		if !s.git.IsRepository(ref.Path) {
			results = append(results, missing(ref))
			continue
		}

		pullSummary, err := s.git.Pull(ctx, ref.Path)
		if err != nil {
			s.logger.Warningf("Pull failed for %s, skipping push: %s", ref.Name, err)
			results = append(results, model.OpResult{Repo: ref.Name, Err: err})
			continue
		}

		pushSummary, err := s.git.Push(ctx, ref.Path)
		if err != nil {
			results = append(results, model.OpResult{Repo: ref.Name, Err: err})
			continue
		}

		results = append(results, model.OpResult{
			Repo:    ref.Name,
			Summary: fmt.Sprintf("pull: %s, push: %s", pullSummary, pushSummary),
		})
	}
	return results
}

type op func(ctx context.Context, path string) (string, error)

func (s *Service) each(ctx context.Context, name string, f op) []model.OpResult {
	var results []model.OpResult
	for _, ref := range s.project.RepoRefs() {
		if !s.git.IsRepository(ref.Path) {
			results = append(results, missing(ref))
			continue
		}

		summary, err := f(ctx, ref.Path)
		if err != nil {
			s.logger.Warningf("Operation %s failed for %s: %s", name, ref.Name, err)
			results = append(results, model.OpResult{Repo: ref.Name, Err: err})
			continue
		}

		results = append(results, model.OpResult{Repo: ref.Name, Summary: summary})
	}
	return results
}

func missing(ref model.RepoRef) model.OpResult {
	return model.OpResult{
		Repo: ref.Name,
		Err:  fmt.Errorf("no working tree at %s: %w", ref.Path, model.ErrNotFound),
	}
}
