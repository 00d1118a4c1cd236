package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell-cli/internal/model"
)

// SchemaVersion is written to meta.json next to the collections.
// Version 2 is the multi-ink refill shape (inkIds) with stable refill ids.
const SchemaVersion = 2

const MetaFile = "meta.json"

var (
	ErrInvalidName       = errors.New("invalid resource name")
	ErrInvalidData       = errors.New("collection data must be a JSON array")
	ErrUnsupportedSchema = errors.New("unsupported schema version")
)

// Gateway is the durable side of the entity store: whole-collection reads and
// full-replace writes of the three named resources.
type Gateway interface {
	LoadAll(ctx context.Context) (model.Collections, error)
	SaveCollection(ctx context.Context, name string, data any) error
}

// ValidateName accepts exactly the resource names in model.Resources.
// It runs before any I/O.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	for _, r := range name {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
	}
	for _, allowed := range model.Resources {
		if name == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidName, name)
}

// FileName maps a resource to its backing file name.
func FileName(name string) string { return name + ".json" }

// Files lists every file a publish should stage, relative to the data dir.
func Files() []string {
	out := make([]string, 0, len(model.Resources)+1)
	for _, r := range model.Resources {
		out = append(out, FileName(r))
	}
	return append(out, MetaFile)
}

type Meta struct {
	SchemaVersion int `json:"schemaVersion"`
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice reports the outcome of a background save or publish.
type Notice struct {
	Kind     NoticeKind
	Resource string
	Message  string
	Err      error
}

type Notifier interface {
	Notify(Notice)
}

type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = NotifierFunc(func(Notice) {})

// ResourceName is the inverse of FileName.
func ResourceName(file string) string { return strings.TrimSuffix(file, ".json") }
