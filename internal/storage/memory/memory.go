package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mgit-dev/mgit/internal/log"
	"github.com/mgit-dev/mgit/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository.
type Repository struct {
	states map[string]model.RepoState
	mu     sync.RWMutex
	logger log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		states: make(map[string]model.RepoState),
		logger: cfg.Logger,
	}, nil
}

// SaveRepoState stores the state of a repository, replacing any previous one.
func (r *Repository) SaveRepoState(ctx context.Context, state model.RepoState) error {
	if state.Name == "" {
		return fmt.Errorf("repository name is required: %w", model.ErrNotValid)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.states[state.Name] = copyState(state)
	r.logger.Debugf("Saved state for repository %s", state.Name)

	return nil
}

// GetRepoState retrieves a repository state by name.
func (r *Repository) GetRepoState(ctx context.Context, name string) (*model.RepoState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[name]
	if !ok {
		return nil, fmt.Errorf("repository state %s: %w", name, model.ErrNotFound)
	}

	stateCopy := copyState(state)
	return &stateCopy, nil
}

// ListRepoStates returns all stored repository states sorted by name.
func (r *Repository) ListRepoStates(ctx context.Context) ([]model.RepoState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	states := make([]model.RepoState, 0, len(r.states))
	for _, state := range r.states {
		states = append(states, copyState(state))
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Name < states[j].Name })

	return states, nil
}

// DeleteRepoState deletes a repository state.
func (r *Repository) DeleteRepoState(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.states[name]; !ok {
		return fmt.Errorf("repository state %s: %w", name, model.ErrNotFound)
	}

	delete(r.states, name)
	r.logger.Debugf("Deleted state for repository %s", name)

	return nil
}

func copyState(s model.RepoState) model.RepoState {
	c := s
	c.Branches = append([]model.BranchInfo(nil), s.Branches...)
	return c
}
