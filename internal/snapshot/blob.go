package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// Driver names a blob backend.
type Driver string

const (
	DriverFS     Driver = "fs"
	DriverMemory Driver = "memory"
	DriverS3     Driver = "s3"
)

var (
	ErrExists   = errors.New("blob already exists")
	ErrNotFound = errors.New("blob not found")
)

// Info describes a stored blob.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
}

// Blobs is a create-only key/value store for snapshot files.
type Blobs interface {
	Put(ctx context.Context, key string, r io.Reader) (Info, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// Config selects and configures a backend.
type Config struct {
	Driver string
	// Dir is the fs driver root.
	Dir string
	S3  S3Config
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	PathStyle bool
}

// Open builds the configured backend; the default driver is fs.
func Open(ctx context.Context, cfg Config) (Blobs, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(cfg.Driver))) {
	case "", DriverFS:
		return NewFS(cfg.Dir)
	case DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown snapshot driver %q (expected fs|memory|s3)", cfg.Driver)
	}
}

// checkKey rejects keys that could escape a filesystem root.
func checkKey(key string) error {
	switch {
	case strings.TrimSpace(key) == "":
		return errors.New("empty key")
	case strings.HasPrefix(key, "/"):
		return fmt.Errorf("absolute key %q", key)
	case strings.Contains(key, ".."):
		return fmt.Errorf("key %q contains '..'", key)
	}
	return nil
}
