// Package history keeps a local journal of saves, publishes, pulls and
// snapshots. It lives under <data dir>/.inkwell and is never published.
package history

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type Kind string

const (
	KindSave     Kind = "save"
	KindPublish  Kind = "publish"
	KindPull     Kind = "pull"
	KindSnapshot Kind = "snapshot"
	KindRestore  Kind = "restore"
)

type Event struct {
	ID       int64     `json:"id"`
	Kind     Kind      `json:"kind"`
	Resource string    `json:"resource,omitempty"`
	OK       bool      `json:"ok"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

// Recorder is what the session and the web server write to.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Event) error { return nil }

// Nop discards every event.
var Nop Recorder = nopRecorder{}

// LocalDir is the directory (relative to the data dir) for local-only state.
const LocalDir = ".inkwell"

// Path returns the journal location for a data dir.
func Path(dataDir string) string {
	return filepath.Join(filepath.Clean(dataDir), LocalDir, "history.sqlite")
}

type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the journal at path.
func Open(ctx context.Context, path string) (*Journal, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history: empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite registers as "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the server write while a CLI process reads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Journal{db: db, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			resource TEXT NOT NULL DEFAULT '',
			ok INTEGER NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_at ON events(at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends ev. A zero At is stamped with the current time.
func (j *Journal) Record(ctx context.Context, ev Event) error {
	if strings.TrimSpace(string(ev.Kind)) == "" {
		return errors.New("history: empty event kind")
	}
	if ev.At.IsZero() {
		ev.At = j.now()
	}
	ok := 0
	if ev.OK {
		ok = 1
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO events(kind, resource, ok, detail, at_unixms) VALUES(?, ?, ?, ?, ?)`,
		string(ev.Kind), ev.Resource, ok, ev.Detail, ev.At.UnixMilli())
	return err
}

// List returns up to limit events, newest first. limit <= 0 means all.
func (j *Journal) List(ctx context.Context, limit int) ([]Event, error) {
	q := `SELECT id, kind, resource, ok, detail, at_unixms FROM events ORDER BY at_unixms DESC, id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var (
			ev   Event
			kind string
			ok   int
			ms   int64
		)
		if err := rows.Scan(&ev.ID, &kind, &ev.Resource, &ok, &ev.Detail, &ms); err != nil {
			return nil, err
		}
		ev.Kind = Kind(kind)
		ev.OK = ok != 0
		ev.At = time.UnixMilli(ms).UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}
