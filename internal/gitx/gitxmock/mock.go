// Package gitxmock holds a hand written mock of the git client for the
// service tests.
package gitxmock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mgit-dev/mgit/internal/model"
)

// Client is a mock of gitx.Client.
type Client struct {
	mock.Mock
}

func (m *Client) IsRepository(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

func (m *Client) RemoteURL(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}

func (m *Client) CurrentBranch(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}

func (m *Client) DefaultBranch(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}

func (m *Client) State(path, name string) (*model.RepoState, error) {
	args := m.Called(path, name)
	state, _ := args.Get(0).(*model.RepoState)
	return state, args.Error(1)
}

func (m *Client) Checkout(ctx context.Context, path, branch string) error {
	args := m.Called(ctx, path, branch)
	return args.Error(0)
}

func (m *Client) Pull(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

func (m *Client) Push(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}
