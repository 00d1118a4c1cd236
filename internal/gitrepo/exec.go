package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Result is the raw output of a git invocation, kept for diagnostics.
type Result struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

func (r *Result) append(o Result) {
	r.Stdout += o.Stdout
	r.Stderr += o.Stderr
}

// Error is a failed git invocation.
type Error struct {
	Args   []string
	Result Result
	Err    error
}

func (e *Error) Error() string {
	msg := strings.TrimSpace(e.Result.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(e.Result.Stdout)
	}
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), msg)
}

func (e *Error) Unwrap() error { return e.Err }

// ExitCode returns the process exit code, or -1 when git did not run.
func (e *Error) ExitCode() int {
	var ee *exec.ExitError
	if errors.As(e.Err, &ee) {
		return ee.ExitCode()
	}
	return -1
}

func git(ctx context.Context, dir string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		return res, &Error{Args: args, Result: res, Err: err}
	}
	return res, nil
}

func gitOut(ctx context.Context, dir string, args ...string) (string, error) {
	res, err := git(ctx, dir, args...)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}
