package storage

import (
	"context"

	"github.com/mgit-dev/mgit/internal/model"
)

// Repository is the interface for the repository state cache. Reads of git
// state are served from here and refreshed on demand, so status stays fast on
// projects with many repositories.
type Repository interface {
	SaveRepoState(ctx context.Context, state model.RepoState) error
	GetRepoState(ctx context.Context, name string) (*model.RepoState, error)
	ListRepoStates(ctx context.Context) ([]model.RepoState, error)
	DeleteRepoState(ctx context.Context, name string) error
}
