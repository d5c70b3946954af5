package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgit-dev/mgit/internal/model"
	"github.com/mgit-dev/mgit/internal/storage/memory"
)

func stateFixture(name, branch string) model.RepoState {
	return model.RepoState{
		Name:          name,
		CurrentBranch: branch,
		LastUpdated:   time.Now().UTC(),
		Branches:      []model.BranchInfo{{Name: branch}},
	}
}

func newRepo(t *testing.T) *memory.Repository {
	t.Helper()
	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)
	return repo
}

func TestRepoStateCRUD(t *testing.T) {
	assert := assert.New(t)
	repo := newRepo(t)
	ctx := context.Background()

	state := stateFixture("api", "main")
	require.NoError(t, repo.SaveRepoState(ctx, state))

	got, err := repo.GetRepoState(ctx, "api")
	require.NoError(t, err)
	assert.Equal(state, *got)

	// The stored copy is independent of the caller's slice.
	state.Branches[0].Name = "mutated"
	got, err = repo.GetRepoState(ctx, "api")
	require.NoError(t, err)
	assert.Equal("main", got.Branches[0].Name)

	require.NoError(t, repo.SaveRepoState(ctx, stateFixture("web", "develop")))
	states, err := repo.ListRepoStates(ctx)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal("api", states[0].Name)
	assert.Equal("web", states[1].Name)

	require.NoError(t, repo.DeleteRepoState(ctx, "api"))
	_, err = repo.GetRepoState(ctx, "api")
	assert.ErrorIs(err, model.ErrNotFound)
	assert.ErrorIs(repo.DeleteRepoState(ctx, "api"), model.ErrNotFound)
}

func TestSaveRepoStateWithoutName(t *testing.T) {
	repo := newRepo(t)
	err := repo.SaveRepoState(context.Background(), model.RepoState{CurrentBranch: "main"})
	assert.ErrorIs(t, err, model.ErrNotValid)
}
