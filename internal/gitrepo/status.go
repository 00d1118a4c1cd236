package gitrepo

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// Status is a snapshot of the data directory's repository.
type Status struct {
	IsRepo bool   `json:"isRepo"`
	Root   string `json:"root,omitempty"`
	Branch string `json:"branch,omitempty"`
	Head   string `json:"head,omitempty"`

	Upstream          string `json:"upstream,omitempty"`
	UpstreamRemoteURL string `json:"upstreamRemoteURL,omitempty"`
	Ahead             int    `json:"ahead,omitempty"`
	Behind            int    `json:"behind,omitempty"`

	// Changed lists working tree paths that differ from HEAD.
	Changed  []string `json:"changed,omitempty"`
	Dirty    bool     `json:"dirty"`
	Unmerged bool     `json:"unmerged"`

	// InProgressKind is merge, rebase, cherry-pick or revert.
	InProgress     bool   `json:"inProgress"`
	InProgressKind string `json:"inProgressKind,omitempty"`
}

// pendingOps maps the ref git leaves behind to the operation it belongs to.
var pendingOps = []struct{ ref, kind string }{
	{"MERGE_HEAD", "merge"},
	{"REBASE_HEAD", "rebase"},
	{"CHERRY_PICK_HEAD", "cherry-pick"},
	{"REVERT_HEAD", "revert"},
}

// GetStatus reports IsRepo=false, not an error, outside a repository.
func GetStatus(ctx context.Context, dir string) (Status, error) {
	root, err := gitOut(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return Status{}, nil
	}
	st := Status{IsRepo: true, Root: strings.TrimSpace(root)}
	if st.Root == "" {
		return Status{}, errors.New("git rev-parse returned empty root")
	}

	st.Branch = trimmedOut(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	st.Head = trimmedOut(ctx, dir, "rev-parse", "--short", "HEAD")
	st.Upstream = trimmedOut(ctx, dir, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}")

	if st.Upstream != "" {
		if remote, _, ok := strings.Cut(st.Upstream, "/"); ok {
			st.UpstreamRemoteURL, _ = RemoteURL(ctx, dir, remote)
		}
		counts := trimmedOut(ctx, dir, "rev-list", "--left-right", "--count", "HEAD...@{u}")
		if a, b, ok := parseAheadBehind(counts); ok {
			st.Ahead, st.Behind = a, b
		}
	}

	porcelain, _ := gitOut(ctx, dir, "status", "--porcelain=v1")
	st.Changed, st.Unmerged = parsePorcelain(porcelain)
	st.Dirty = len(st.Changed) > 0

	for _, op := range pendingOps {
		if _, err := git(ctx, dir, "rev-parse", "--verify", "-q", op.ref); err == nil {
			st.InProgress, st.InProgressKind = true, op.kind
			break
		}
	}
	return st, nil
}

// RemoteURL returns the fetch URL of a remote, origin when name is empty.
func RemoteURL(ctx context.Context, dir, name string) (string, error) {
	if name = strings.TrimSpace(name); name == "" {
		name = "origin"
	}
	out, err := gitOut(ctx, dir, "remote", "get-url", name)
	return strings.TrimSpace(out), err
}

func trimmedOut(ctx context.Context, dir string, args ...string) string {
	out, _ := gitOut(ctx, dir, args...)
	return strings.TrimSpace(out)
}

// parsePorcelain reads `git status --porcelain=v1` lines ("XY path").
func parsePorcelain(out string) (paths []string, unmerged bool) {
	for _, ln := range strings.Split(out, "\n") {
		ln = strings.TrimRight(ln, "\r")
		if len(ln) < 4 || strings.TrimSpace(ln[:2]) == "" {
			continue
		}
		x, y := ln[0], ln[1]
		if x == 'U' || y == 'U' || (x == y && (x == 'A' || x == 'D')) {
			unmerged = true
		}
		path := ln[3:]
		if _, to, ok := strings.Cut(path, " -> "); ok {
			path = to
		}
		paths = append(paths, strings.Trim(path, `"`))
	}
	return paths, unmerged
}

// parseAheadBehind reads `rev-list --left-right --count` output.
func parseAheadBehind(out string) (ahead, behind int, ok bool) {
	left, right, found := strings.Cut(strings.TrimSpace(out), "\t")
	if !found {
		return 0, 0, false
	}
	a, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return 0, 0, false
	}
	return a, b, true
}
