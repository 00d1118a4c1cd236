package gitrepo

import (
	"context"
	"errors"
	"strings"
)

func Init(ctx context.Context, dir string) error {
	_, err := git(ctx, dir, "init")
	return err
}

// SetRemoteURL adds remoteName or updates its URL.
func SetRemoteURL(ctx context.Context, dir, remoteName, remoteURL string) error {
	remoteName = strings.TrimSpace(remoteName)
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteName == "" {
		remoteName = "origin"
	}
	if remoteURL == "" {
		return errors.New("empty remote url")
	}

	if _, err := git(ctx, dir, "remote", "get-url", remoteName); err == nil {
		_, err := git(ctx, dir, "remote", "set-url", remoteName, remoteURL)
		return err
	}
	_, err := git(ctx, dir, "remote", "add", remoteName, remoteURL)
	return err
}
