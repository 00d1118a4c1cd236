package review

import (
	"context"
	"strings"
	"time"

	"inkwell-cli/internal/gitrepo"
)

// DiffResult is the pending change set of the data files.
type DiffResult struct {
	Diff       string `json:"diff"`
	HasChanges bool   `json:"hasChanges"`
}

// SyncResult is the outcome of a push or pull, with raw git output.
type SyncResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Stdout  string `json:"stdout,omitempty"`
	Stderr  string `json:"stderr,omitempty"`
}

// Publisher is the version-control side of the workflow.
// Push and Pull return a non-nil error exactly when the result is unsuccessful.
type Publisher interface {
	Diff(ctx context.Context) (DiffResult, error)
	Push(ctx context.Context) (SyncResult, error)
	Pull(ctx context.Context) (SyncResult, error)
}

// LocalPublisher runs git directly against the data dir.
type LocalPublisher struct {
	Dir   string
	Paths []string
	// Now stamps commit messages; defaults to time.Now.
	Now func() time.Time
}

func (p LocalPublisher) Diff(ctx context.Context) (DiffResult, error) {
	diff, err := gitrepo.DiffPaths(ctx, p.Dir, p.Paths)
	if err != nil {
		return DiffResult{}, err
	}
	return DiffResult{Diff: diff, HasChanges: strings.TrimSpace(diff) != ""}, nil
}

// Push stages the data files, commits them with a timestamped message and
// pushes. A failed push leaves the commit in place.
func (p LocalPublisher) Push(ctx context.Context) (SyncResult, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	committed, res, err := gitrepo.CommitPaths(ctx, p.Dir, p.Paths, gitrepo.DefaultCommitMessage(now()))
	if err != nil {
		return failed("Commit failed", res, err), err
	}

	pushed, err := gitrepo.PushWithRetry(ctx, p.Dir)
	res.Stdout += pushed.Stdout
	res.Stderr += pushed.Stderr
	if err != nil {
		msg := "Push failed"
		if committed {
			msg = "Committed locally but push failed"
		}
		return failed(msg, res, err), err
	}

	msg := "Changes committed and pushed"
	if !committed {
		msg = "Nothing to commit; pushed"
	}
	return SyncResult{Success: true, Message: msg, Stdout: res.Stdout, Stderr: res.Stderr}, nil
}

func (p LocalPublisher) Pull(ctx context.Context) (SyncResult, error) {
	res, err := gitrepo.PullRebase(ctx, p.Dir)
	if err != nil {
		return failed("Pull failed", res, err), err
	}
	return SyncResult{Success: true, Message: "Pulled latest changes", Stdout: res.Stdout, Stderr: res.Stderr}, nil
}

func failed(msg string, res gitrepo.Result, err error) SyncResult {
	return SyncResult{
		Success: false,
		Message: msg,
		Error:   err.Error(),
		Stdout:  res.Stdout,
		Stderr:  res.Stderr,
	}
}
