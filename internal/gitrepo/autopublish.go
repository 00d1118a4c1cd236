package gitrepo

import (
	"context"
	"strings"
	"sync"
	"time"
)

// AutoResult reports one background publish attempt.
type AutoResult struct {
	Committed bool
	Pushed    bool
	Result    Result
	Err       error
}

type AutoPublisherOpts struct {
	Dir      string
	Paths    []string
	Debounce time.Duration
	// Push enables `git push` (with one pull --rebase retry) after committing
	// when an upstream is configured.
	Push bool
	// OnResult is called after every attempt that committed or failed.
	OnResult func(AutoResult)
}

// AutoPublisher commits (and optionally pushes) the data files a while after
// the last save, coalescing bursts of saves into one commit.
type AutoPublisher struct {
	opts AutoPublisherOpts

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	running bool
	stopped bool
}

func NewAutoPublisher(opts AutoPublisherOpts) *AutoPublisher {
	if opts.Debounce <= 0 {
		opts.Debounce = time.Minute
	}
	return &AutoPublisher{opts: opts}
}

// Notify schedules a publish after the debounce window.
func (a *AutoPublisher) Notify() {
	if a == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	a.pending = true
	if a.timer == nil {
		a.timer = time.AfterFunc(a.opts.Debounce, a.onTimer)
		return
	}
	a.timer.Reset(a.opts.Debounce)
}

func (a *AutoPublisher) Stop() {
	if a == nil {
		return
	}
	a.mu.Lock()
	a.stopped = true
	if a.timer != nil {
		a.timer.Stop()
	}
	a.mu.Unlock()
}

func (a *AutoPublisher) onTimer() {
	a.mu.Lock()
	if a.running {
		// A run is in flight; try again once it has finished.
		a.timer.Reset(a.opts.Debounce)
		a.mu.Unlock()
		return
	}
	if !a.pending || a.stopped {
		a.mu.Unlock()
		return
	}
	a.pending = false
	a.running = true
	a.mu.Unlock()

	res := a.run(context.Background())
	if a.opts.OnResult != nil && (res.Committed || res.Err != nil) {
		a.opts.OnResult(res)
	}

	a.mu.Lock()
	a.running = false
	if a.pending && a.timer != nil && !a.stopped {
		a.timer.Reset(a.opts.Debounce)
	}
	a.mu.Unlock()
}

func (a *AutoPublisher) run(ctx context.Context) AutoResult {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	var out AutoResult
	committed, res, err := CommitPaths(ctx, a.opts.Dir, a.opts.Paths, "")
	out.Committed = committed
	out.Result.append(res)
	if err != nil || !committed || !a.opts.Push {
		out.Err = err
		return out
	}

	st, err := GetStatus(ctx, a.opts.Dir)
	if err != nil || strings.TrimSpace(st.Upstream) == "" {
		out.Err = err
		return out
	}
	res, err = PushWithRetry(ctx, a.opts.Dir)
	out.Result.append(res)
	out.Err = err
	out.Pushed = err == nil
	return out
}
