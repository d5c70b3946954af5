package tags

import (
	"context"
	"fmt"

	"github.com/mgit-dev/mgit/internal/gitx"
	"github.com/mgit-dev/mgit/internal/log"
	"github.com/mgit-dev/mgit/internal/model"
)

// Reserved tag names that restore to every repository's default branch
// instead of a saved position.
var virtualTags = map[string]bool{"master": true, "main": true}

// Project is the slice of the project configuration the service needs.
type Project interface {
	RepoRefs() []model.RepoRef
	Tag(name string) (map[string]string, error)
	SetTag(name string, branches map[string]string) error
}

// ServiceConfig is the configuration for the tags service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Tags"})
	return nil
}

// Service saves and restores named sets of branch positions across the
// project's repositories.
type Service struct {
	project Project
	git     gitx.Client
	logger  log.Logger
}

// NewService creates a new tags service.
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

// Save records the current branch of every repository under the given tag
// name and persists it in the project configuration. Repositories without a
// working tree or with a detached HEAD are left out.
func (s *Service) Save(ctx context.Context, tag string) (map[string]string, error) {
	if tag == "" {
		return nil, fmt.Errorf("tag name is required: %w", model.ErrNotValid)
	}
	if virtualTags[tag] {
		return nil, fmt.Errorf("tag name %q is reserved: %w", tag, model.ErrNotValid)
	}

	branches := map[string]string{}
	for _, ref := range s.project.RepoRefs() {
		if !s.git.IsRepository(ref.Path) {
			s.logger.Warningf("Repository %s has no working tree, not tagging", ref.Name)
			continue
		}

		branch, err := s.git.CurrentBranch(ref.Path)
		if err != nil {
			return nil, fmt.Errorf("could not read branch of %s: %w", ref.Name, err)
		}
		if branch == gitx.DetachedHead {
			s.logger.Warningf("Repository %s is on a detached HEAD, not tagging", ref.Name)
			continue
		}

		branches[ref.Name] = branch
	}

	if err := s.project.SetTag(tag, branches); err != nil {
		return nil, fmt.Errorf("could not persist tag: %w", err)
	}

	s.logger.Infof("Saved tag %s covering %d repositories", tag, len(branches))
	return branches, nil
}

// Restore checks out the branches recorded under the given tag. The reserved
// names main and master restore every repository to its default branch.
func (s *Service) Restore(ctx context.Context, tag string) ([]model.OpResult, error) {
	if virtualTags[tag] {
		return s.restoreDefault(ctx), nil
	}

	branches, err := s.project.Tag(tag)
	if err != nil {
		return nil, fmt.Errorf("could not get tag: %w", err)
	}

	var results []model.OpResult
	for _, ref := range s.project.RepoRefs() {
		branch, ok := branches[ref.Name]
		if !ok {
			continue
		}

		results = append(results, s.checkout(ctx, ref, branch))
	}
	return results, nil
}

func (s *Service) restoreDefault(ctx context.Context) []model.OpResult {
	var results []model.OpResult
	for _, ref := range s.project.RepoRefs() {
		if !s.git.IsRepository(ref.Path) {
			results = append(results, model.OpResult{
				Repo: ref.Name,
				Err:  fmt.Errorf("no working tree at %s: %w", ref.Path, model.ErrNotFound),
			})
			continue
		}

		branch, err := s.git.DefaultBranch(ref.Path)
		if err != nil {
			results = append(results, model.OpResult{Repo: ref.Name, Err: err})
			continue
		}

		results = append(results, s.checkout(ctx, ref, branch))
	}
	return results
}

func (s *Service) checkout(ctx context.Context, ref model.RepoRef, branch string) model.OpResult {
	if err := s.git.Checkout(ctx, ref.Path, branch); err != nil {
		s.logger.Warningf("Checkout of %s failed for %s: %s", branch, ref.Name, err)
		return model.OpResult{Repo: ref.Name, Err: err}
	}
	return model.OpResult{Repo: ref.Name, Summary: branch}
}
