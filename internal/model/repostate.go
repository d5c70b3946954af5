package model

import "time"

// RepoState is the cached view of one repository, stored in the embedded
// state database and refreshed from git on demand.
type RepoState struct {
	Name          string
	CurrentBranch string
	LastUpdated   time.Time
	Branches      []BranchInfo
}

// BranchInfo is the cached view of one branch.
type BranchInfo struct {
	Name        string
	LastUpdated time.Time
}
