package repostatus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mgit-dev/mgit/internal/app/repostatus"
	"github.com/mgit-dev/mgit/internal/gitx/gitxmock"
	"github.com/mgit-dev/mgit/internal/model"
	"github.com/mgit-dev/mgit/internal/storage/storagemock"
)

var mockCtx = mock.Anything

type testProject []model.RepoRef

func (p testProject) RepoRefs() []model.RepoRef { return p }

func newService(t *testing.T, git *gitxmock.Client, repo *storagemock.Repository, refs testProject) *repostatus.Service {
	t.Helper()
	svc, err := repostatus.NewService(repostatus.ServiceConfig{
		Project:    refs,
		Git:        git,
		Repository: repo,
	})
	require.NoError(t, err)
	return svc
}

func TestStatusUsesCache(t *testing.T) {
	assert := assert.New(t)
	refs := testProject{{Name: "api", Path: "/p/api"}, {Name: "web", Path: "/p/web"}}

	cachedAPI := model.RepoState{Name: "api", CurrentBranch: "main", LastUpdated: time.Now()}
	liveWeb := model.RepoState{Name: "web", CurrentBranch: "develop"}

	repo := &storagemock.Repository{}
	repo.On("ListRepoStates", mockCtx).Return([]model.RepoState{cachedAPI}, nil)
	repo.On("SaveRepoState", mockCtx, liveWeb).Return(nil)

	git := &gitxmock.Client{}
	git.On("IsRepository", "/p/web").Return(true)
	git.On("State", "/p/web", "web").Return(&liveWeb, nil)

	svc := newService(t, git, repo, refs)

	states, err := svc.Status(context.TODO(), false)
	require.NoError(t, err)

	// api is served from cache, web was never cached and is read live.
	require.Len(t, states, 2)
	assert.Equal(cachedAPI, states[0])
	assert.Equal(liveWeb, states[1])

	git.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestRefreshReadsEverything(t *testing.T) {
	assert := assert.New(t)
	refs := testProject{{Name: "api", Path: "/p/api"}}

	live := model.RepoState{Name: "api", CurrentBranch: "develop"}

	repo := &storagemock.Repository{}
	repo.On("SaveRepoState", mockCtx, live).Return(nil)

	git := &gitxmock.Client{}
	git.On("IsRepository", "/p/api").Return(true)
	git.On("State", "/p/api", "api").Return(&live, nil)

	svc := newService(t, git, repo, refs)

	states, err := svc.Refresh(context.TODO())
	require.NoError(t, err)

	require.Len(t, states, 1)
	assert.Equal("develop", states[0].CurrentBranch)
	// The cache is never consulted on refresh.
	repo.AssertNotCalled(t, "ListRepoStates", mockCtx)
}

func TestStatusSkipsMissingWorkingTree(t *testing.T) {
	assert := assert.New(t)
	refs := testProject{{Name: "api", Path: "/p/api"}}

	repo := &storagemock.Repository{}
	repo.On("ListRepoStates", mockCtx).Return(nil, nil)
	repo.On("DeleteRepoState", mockCtx, "api").Return(nil)

	git := &gitxmock.Client{}
	git.On("IsRepository", "/p/api").Return(false)

	svc := newService(t, git, repo, refs)

	states, err := svc.Status(context.TODO(), false)
	require.NoError(t, err)
	assert.Empty(states)

	// A removed working tree drops its stale cache entry.
	repo.AssertExpectations(t)
}
