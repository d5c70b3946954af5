// Package storagemock holds a hand written mock of the state store for the
// service tests.
package storagemock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mgit-dev/mgit/internal/model"
)

// Repository is a mock of storage.Repository.
type Repository struct {
	mock.Mock
}

func (m *Repository) SaveRepoState(ctx context.Context, state model.RepoState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *Repository) GetRepoState(ctx context.Context, name string) (*model.RepoState, error) {
	args := m.Called(ctx, name)
	state, _ := args.Get(0).(*model.RepoState)
	return state, args.Error(1)
}

func (m *Repository) ListRepoStates(ctx context.Context) ([]model.RepoState, error) {
	args := m.Called(ctx)
	states, _ := args.Get(0).([]model.RepoState)
	return states, args.Error(1)
}

func (m *Repository) DeleteRepoState(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
