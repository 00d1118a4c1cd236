package gitrepo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// DiffPaths returns a unified diff of paths (relative to dir) against HEAD.
// Untracked files, or every file in a repo without commits, show up as additions.
func DiffPaths(ctx context.Context, dir string, paths []string) (string, error) {
	var b strings.Builder
	var untracked []string

	if refExists(ctx, dir, "HEAD") {
		out, err := gitOut(ctx, dir, append([]string{"diff", "--no-color", "HEAD", "--"}, paths...)...)
		if err != nil {
			return "", err
		}
		b.WriteString(out)

		others, err := gitOut(ctx, dir, append([]string{"ls-files", "--others", "--exclude-standard", "--"}, paths...)...)
		if err != nil {
			return "", err
		}
		untracked = splitLines(others)
	} else {
		untracked = existingPaths(dir, paths)
	}

	for _, p := range untracked {
		res, err := git(ctx, dir, "diff", "--no-color", "--no-index", "--", os.DevNull, p)
		if err != nil {
			// --no-index exits 1 when the files differ, which is always the case here.
			var ge *Error
			if !errors.As(err, &ge) || ge.ExitCode() != 1 {
				return "", err
			}
		}
		b.WriteString(res.Stdout)
	}
	return b.String(), nil
}

func existingPaths(dir string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(filepath.Join(dir, p)); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func splitLines(s string) []string {
	var out []string
	for _, ln := range strings.Split(s, "\n") {
		ln = strings.TrimSpace(strings.TrimRight(ln, "\r"))
		if ln != "" {
			out = append(out, ln)
		}
	}
	return out
}
