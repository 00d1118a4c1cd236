package gitrepo

import (
	"context"
	"strings"
)

func PullRebase(ctx context.Context, dir string) (Result, error) {
	return git(ctx, dir, "pull", "--rebase")
}

func Push(ctx context.Context, dir string) (Result, error) {
	return git(ctx, dir, "push")
}

func IsNonFastForwardPushErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{
		"non-fast-forward",
		"fetch first",
		"rejected",
		"updates were rejected",
	} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

// PushWithRetry pushes and, on a non-fast-forward rejection, pulls with
// rebase once and pushes again. Output of every step is accumulated.
func PushWithRetry(ctx context.Context, dir string) (Result, error) {
	var res Result
	out, err := Push(ctx, dir)
	res.append(out)
	if err == nil || !IsNonFastForwardPushErr(err) {
		return res, err
	}
	out, err = PullRebase(ctx, dir)
	res.append(out)
	if err != nil {
		return res, err
	}
	out, err = Push(ctx, dir)
	res.append(out)
	return res, err
}
