package model

// OpResult is the outcome of a git operation applied to a single repository.
type OpResult struct {
	Repo    string
	Summary string
	Err     error
}

// OK reports whether the operation succeeded.
func (r OpResult) OK() bool { return r.Err == nil }
