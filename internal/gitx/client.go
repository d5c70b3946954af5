package gitx

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/mgit-dev/mgit/internal/log"
	"github.com/mgit-dev/mgit/internal/model"
)

// ClientConfig is the configuration for the system git client.
type ClientConfig struct {
	// GitBin is the git binary used for network operations, "git" by default.
	GitBin string
	Logger log.Logger
}

func (c *ClientConfig) defaults() error {
	if c.GitBin == "" {
		c.GitBin = "git"
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "gitx.SystemClient"})
	return nil
}

// SystemClient implements Client with go-git for local inspection and the
// system git binary for network operations, so credential and SSH resolution
// stay with the user's normal git setup.
type SystemClient struct {
	gitBin string
	logger log.Logger
}

// NewClient creates a new system git client.
func NewClient(cfg ClientConfig) (*SystemClient, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &SystemClient{gitBin: cfg.GitBin, logger: cfg.Logger}, nil
}

func (c *SystemClient) IsRepository(path string) bool {
	_, err := gogit.PlainOpen(path)
	return err == nil
}

func (c *SystemClient) RemoteURL(path string) (string, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return "", fmt.Errorf("could not open repository: %w", err)
	}

	remote, err := repo.Remote(gogit.DefaultRemoteName)
	if err != nil {
		return "", fmt.Errorf("could not get origin remote: %w", err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("origin remote has no URL: %w", model.ErrNotFound)
	}
	return urls[0], nil
}

func (c *SystemClient) CurrentBranch(path string) (string, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return "", fmt.Errorf("could not open repository: %w", err)
	}
	return currentBranch(repo)
}

func currentBranch(repo *gogit.Repository) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("could not read HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return DetachedHead, nil
	}
	return head.Name().Short(), nil
}

func (c *SystemClient) DefaultBranch(path string) (string, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return "", fmt.Errorf("could not open repository: %w", err)
	}

	for _, name := range []string{"main", "master"} {
		if _, err := repo.Reference(plumbing.NewBranchReferenceName(name), false); err == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("default branch: %w", model.ErrNotFound)
}

func (c *SystemClient) State(path, name string) (*model.RepoState, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("could not open repository: %w", err)
	}

	branch, err := currentBranch(repo)
	if err != nil {
		return nil, err
	}

	state := &model.RepoState{Name: name, CurrentBranch: branch}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("could not read HEAD: %w", err)
	}
	if commit, err := repo.CommitObject(head.Hash()); err == nil {
		state.LastUpdated = commit.Committer.When
	}

	iter, err := repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("could not list branches: %w", err)
	}
	defer iter.Close()

	err = iter.ForEach(func(ref *plumbing.Reference) error {
		info := model.BranchInfo{Name: ref.Name().Short()}
		if commit, err := repo.CommitObject(ref.Hash()); err == nil {
			info.LastUpdated = commit.Committer.When
		}
		state.Branches = append(state.Branches, info)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not iterate branches: %w", err)
	}

	return state, nil
}

func (c *SystemClient) Checkout(ctx context.Context, path, branch string) error {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return fmt.Errorf("could not open repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("could not get worktree: %w", err)
	}

	err = wt.Checkout(&gogit.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(branch)})
	if err != nil {
		return fmt.Errorf("could not checkout %q: %w", branch, err)
	}

	c.logger.Debugf("Checked out %s in %s", branch, path)
	return nil
}

func (c *SystemClient) Pull(ctx context.Context, path string) (string, error) {
	out, err := c.git(ctx, path, "pull", "--ff-only")
	if err != nil {
		return "", err
	}
	if strings.Contains(strings.ToLower(out), "already up to date") {
		return "already up to date", nil
	}
	return "updated", nil
}

func (c *SystemClient) Push(ctx context.Context, path string) (string, error) {
	out, err := c.git(ctx, path, "push")
	if err != nil {
		return "", err
	}
	if strings.Contains(strings.ToLower(out), "up to date") {
		return "already up to date", nil
	}
	return "pushed", nil
}

// git runs the system git binary against path and returns its combined
// output. Push reports through stderr, so both streams matter.
func (c *SystemClient) git(ctx context.Context, path string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", path}, args...)
	c.logger.Debugf("Running %s %v", c.gitBin, fullArgs)

	out, err := exec.CommandContext(ctx, c.gitBin, fullArgs...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return "", fmt.Errorf("git %s failed: %w", args[0], err)
		}
		return "", fmt.Errorf("git %s failed: %s: %w", args[0], firstLine(msg), err)
	}
	return string(out), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
