package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell-cli/internal/store"
)

type State int

const (
	Clean State = iota
	Dirty
)

func (s State) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "clean"
}

// PublishError carries what git said when a publish or pull failed.
type PublishError struct {
	Message string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *PublishError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PublishError) Unwrap() error { return e.Err }

// Details joins the error with the raw output the way it is shown to the user.
func (e *PublishError) Details() string {
	var parts []string
	if e.Err != nil {
		parts = append(parts, e.Err.Error())
	} else if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if s := strings.TrimSpace(e.Stdout); s != "" {
		parts = append(parts, "stdout: "+s)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		parts = append(parts, "stderr: "+s)
	}
	if len(parts) == 0 {
		return "Push failed"
	}
	return strings.Join(parts, "\n\n")
}

// Workflow is the review-then-publish flow gated by the dirty flag.
type Workflow struct {
	pub   Publisher
	dirty *store.Dirty
}

func NewWorkflow(pub Publisher, dirty *store.Dirty) *Workflow {
	if dirty == nil {
		dirty = store.NewDirty()
	}
	return &Workflow{pub: pub, dirty: dirty}
}

func (w *Workflow) State() State {
	if w.dirty.Dirty() {
		return Dirty
	}
	return Clean
}

// Actionable reports whether there is anything to review.
func (w *Workflow) Actionable() bool { return w.State() == Dirty }

// Review fetches the pending diff.
func (w *Workflow) Review(ctx context.Context) (DiffResult, error) {
	return w.pub.Diff(ctx)
}

// Publish commits and pushes. Success clears the dirty flag; failure keeps
// it set and returns a *PublishError.
func (w *Workflow) Publish(ctx context.Context) (SyncResult, error) {
	res, err := w.pub.Push(ctx)
	if err != nil || !res.Success {
		return res, toPublishError(res, err, "Push failed")
	}
	w.dirty.Clear()
	return res, nil
}

// Pull fetches remote changes. It does not touch the dirty flag.
func (w *Workflow) Pull(ctx context.Context) (SyncResult, error) {
	res, err := w.pub.Pull(ctx)
	if err != nil || !res.Success {
		return res, toPublishError(res, err, "Pull failed")
	}
	return res, nil
}

func toPublishError(res SyncResult, err error, fallback string) error {
	msg := res.Message
	if msg == "" {
		msg = fallback
	}
	if err == nil && res.Error != "" {
		err = errors.New(res.Error)
	}
	return &PublishError{Message: msg, Stdout: res.Stdout, Stderr: res.Stderr, Err: err}
}
