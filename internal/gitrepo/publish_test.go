package gitrepo

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

var dataFiles = []string{"inks.json", "pens.json", "refillLog.json"}

func TestDiffPaths_NoCommitsShowsAdditions(t *testing.T) {
	requireGit(t)
	repo := newRepo(t)
	writeFile(t, filepath.Join(repo, "pens.json"), "[\n  {\"id\": \"p1\"}\n]\n")

	diff, err := DiffPaths(context.Background(), repo, dataFiles)
	if err != nil {
		t.Fatalf("DiffPaths: %v", err)
	}
	if !strings.Contains(diff, "+++ b/pens.json") || !strings.Contains(diff, "+  {\"id\": \"p1\"}") {
		t.Fatalf("unexpected diff:\n%s", diff)
	}
}

func TestDiffPaths_OnlyListedFiles(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	repo := newRepo(t)
	writeFile(t, filepath.Join(repo, "pens.json"), "[]\n")
	writeFile(t, filepath.Join(repo, "notes.txt"), "a\n")
	run(t, repo, "git", "add", ".")
	run(t, repo, "git", "commit", "-m", "base")

	diff, err := DiffPaths(ctx, repo, dataFiles)
	if err != nil {
		t.Fatalf("DiffPaths: %v", err)
	}
	if diff != "" {
		t.Fatalf("expected empty diff, got:\n%s", diff)
	}

	writeFile(t, filepath.Join(repo, "pens.json"), "[1]\n")
	writeFile(t, filepath.Join(repo, "notes.txt"), "b\n")
	writeFile(t, filepath.Join(repo, "inks.json"), "[]\n")
	diff, err = DiffPaths(ctx, repo, dataFiles)
	if err != nil {
		t.Fatalf("DiffPaths: %v", err)
	}
	for _, want := range []string{"-[]", "+[1]", "+++ b/inks.json"} {
		if !strings.Contains(diff, want) {
			t.Fatalf("diff missing %q:\n%s", want, diff)
		}
	}
	if strings.Contains(diff, "notes.txt") {
		t.Fatalf("diff should not include unrelated files:\n%s", diff)
	}
}

func TestCommitPaths(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	repo := newRepo(t)
	writeFile(t, filepath.Join(repo, "pens.json"), "[]\n")
	writeFile(t, filepath.Join(repo, "other.txt"), "x\n")

	committed, _, err := CommitPaths(ctx, repo, dataFiles, "")
	if err != nil || !committed {
		t.Fatalf("CommitPaths: committed=%v err=%v", committed, err)
	}
	msg := runOut(t, repo, "git", "log", "-1", "--format=%s")
	if !strings.HasPrefix(msg, "inkwell: update collections (") {
		t.Fatalf("unexpected message %q", msg)
	}
	files := runOut(t, repo, "git", "show", "--name-only", "--format=", "HEAD")
	if strings.TrimSpace(files) != "pens.json" {
		t.Fatalf("unexpected committed files %q", files)
	}

	committed, _, err = CommitPaths(ctx, repo, dataFiles, "")
	if err != nil || committed {
		t.Fatalf("second commit should be a no-op: committed=%v err=%v", committed, err)
	}
}

func TestCommitPaths_NotRepo(t *testing.T) {
	requireGit(t)
	_, _, err := CommitPaths(context.Background(), t.TempDir(), dataFiles, "")
	if !errors.Is(err, ErrNotRepo) {
		t.Fatalf("expected ErrNotRepo, got %v", err)
	}
}

func TestPushAndPull(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	remote := t.TempDir()
	run(t, remote, "git", "init", "--bare")

	repo := newRepo(t)
	writeFile(t, filepath.Join(repo, "pens.json"), "[]\n")
	if _, _, err := CommitPaths(ctx, repo, dataFiles, "base"); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := SetRemoteURL(ctx, repo, "", remote); err != nil {
		t.Fatalf("SetRemoteURL: %v", err)
	}
	run(t, repo, "git", "push", "-u", "origin", "HEAD")

	writeFile(t, filepath.Join(repo, "pens.json"), "[1]\n")
	if _, _, err := CommitPaths(ctx, repo, dataFiles, ""); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := PushWithRetry(ctx, repo); err != nil {
		t.Fatalf("push: %v", err)
	}
	st, err := GetStatus(ctx, repo)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Ahead != 0 || st.UpstreamRemoteURL != remote {
		t.Fatalf("unexpected status after push: %+v", st)
	}
	if _, err := PullRebase(ctx, repo); err != nil {
		t.Fatalf("pull: %v", err)
	}
}

func TestPush_NoRemoteReportsStderr(t *testing.T) {
	requireGit(t)
	ctx := context.Background()
	repo := newRepo(t)
	writeFile(t, filepath.Join(repo, "pens.json"), "[]\n")
	if _, _, err := CommitPaths(ctx, repo, dataFiles, ""); err != nil {
		t.Fatalf("commit: %v", err)
	}
	res, err := Push(ctx, repo)
	if err == nil {
		t.Fatalf("expected push to fail without a remote")
	}
	var ge *Error
	if !errors.As(err, &ge) || ge.ExitCode() == 0 {
		t.Fatalf("expected *Error, got %T %v", err, err)
	}
	if strings.TrimSpace(res.Stderr) == "" {
		t.Fatalf("expected stderr output")
	}
}

func TestIsNonFastForwardPushErr(t *testing.T) {
	if IsNonFastForwardPushErr(nil) {
		t.Fatalf("nil is not a push error")
	}
	if !IsNonFastForwardPushErr(errors.New("! [rejected] main -> main (fetch first)")) {
		t.Fatalf("expected rejection to be detected")
	}
}

func TestAutoPublisherCoalescesSaves(t *testing.T) {
	requireGit(t)
	repo := newRepo(t)

	var mu sync.Mutex
	var results []AutoResult
	done := make(chan struct{}, 4)
	ap := NewAutoPublisher(AutoPublisherOpts{
		Dir:      repo,
		Paths:    dataFiles,
		Debounce: 50 * time.Millisecond,
		OnResult: func(r AutoResult) {
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
			done <- struct{}{}
		},
	})
	defer ap.Stop()

	writeFile(t, filepath.Join(repo, "pens.json"), "[]\n")
	ap.Notify()
	writeFile(t, filepath.Join(repo, "inks.json"), "[]\n")
	ap.Notify()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("auto publish did not run")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(results) != 1 || !results[0].Committed || results[0].Err != nil {
		t.Fatalf("unexpected results: %+v", results)
	}
	count := strings.TrimSpace(runOut(t, repo, "git", "rev-list", "--count", "HEAD"))
	if count != "1" {
		t.Fatalf("expected a single commit, got %s", count)
	}
}
