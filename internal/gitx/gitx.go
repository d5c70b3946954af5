// Package gitx is the narrow git surface the tool consumes. Everything the
// rest of the app knows about git goes through Client; protocol details,
// credentials and transports stay out of scope.
package gitx

import (
	"context"

	"github.com/mgit-dev/mgit/internal/model"
)

// DetachedHead is the branch name reported when HEAD is not on a branch.
const DetachedHead = "(detached)"

// Client knows how to inspect and operate local git repositories.
type Client interface {
	// IsRepository reports whether path is a git working tree.
	IsRepository(path string) bool
	// RemoteURL returns the URL of the origin remote.
	RemoteURL(path string) (string, error)
	// CurrentBranch returns the checked out branch, or DetachedHead.
	CurrentBranch(path string) (string, error)
	// DefaultBranch returns the repository's main or master branch.
	DefaultBranch(path string) (string, error)
	// State reads the repository's current state: checked out branch, last
	// update time and the local branch list.
	State(path, name string) (*model.RepoState, error)
	// Checkout switches the working tree to an existing local branch.
	Checkout(ctx context.Context, path, branch string) error
	// Pull fast-forwards the current branch from origin and returns a short
	// human readable summary.
	Pull(ctx context.Context, path string) (string, error)
	// Push publishes the current branch to origin and returns a short human
	// readable summary.
	Push(ctx context.Context, path string) (string, error)
}
