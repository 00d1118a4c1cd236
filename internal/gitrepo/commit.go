package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotRepo = errors.New("not a git repository")

// DefaultCommitMessage is the generated message used when none is given.
func DefaultCommitMessage(now time.Time) string {
	return fmt.Sprintf("inkwell: update collections (%s)", now.UTC().Format(time.RFC3339))
}

// CommitPaths stages and commits only the given paths (relative to dir).
// Other staged or modified files are left untouched.
// Returns committed=false when those paths have no changes.
func CommitPaths(ctx context.Context, dir string, paths []string, message string) (committed bool, res Result, err error) {
	st, err := GetStatus(ctx, dir)
	if err != nil {
		return false, res, err
	}
	if !st.IsRepo {
		return false, res, ErrNotRepo
	}
	if st.Unmerged || st.InProgress {
		return false, res, errors.New("git repo has an in-progress merge/rebase; resolve first")
	}

	targets := existingPaths(dir, paths)
	if len(targets) == 0 {
		return false, res, nil
	}

	added, err := git(ctx, dir, append([]string{"add", "--"}, targets...)...)
	res.append(added)
	if err != nil {
		return false, res, err
	}

	staged, err := gitOut(ctx, dir, append([]string{"diff", "--cached", "--name-only", "--"}, targets...)...)
	if err != nil {
		return false, res, err
	}
	if strings.TrimSpace(staged) == "" {
		return false, res, nil
	}

	msg := strings.TrimSpace(message)
	if msg == "" {
		msg = DefaultCommitMessage(time.Now())
	}
	out, err := git(ctx, dir, append([]string{"commit", "-m", msg, "--"}, targets...)...)
	res.append(out)
	if err != nil {
		return false, res, err
	}
	return true, res, nil
}
