package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"inkwell-cli/internal/model"

	"github.com/peterbourgon/diskv/v3"
)

// Disk stores each collection as <dir>/<name>.json.
// Writes to the same resource are serialised; different resources write concurrently.
type Disk struct {
	dir   string
	d     *diskv.Diskv
	locks map[string]*sync.Mutex
}

func NewDisk(dir string) (*Disk, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("gateway: data dir is empty")
	}
	dir = filepath.Clean(strings.TrimSpace(dir))
	g := &Disk{
		dir: dir,
		d: diskv.New(diskv.Options{
			BasePath:          dir,
			TempDir:           filepath.Join(dir, ".inkwell", "tmp"),
			AdvancedTransform: keyToPath,
			InverseTransform:  pathToKey,
			// No cache: git pull rewrites files behind our back.
			CacheSizeMax: 0,
		}),
		locks: map[string]*sync.Mutex{},
	}
	for _, r := range model.Resources {
		g.locks[r] = &sync.Mutex{}
	}
	g.locks[strings.TrimSuffix(MetaFile, ".json")] = &sync.Mutex{}
	return g, nil
}

func (g *Disk) Dir() string { return g.dir }

// Ensure creates the data dir, initialises missing collections with [] and
// writes meta.json when absent. An unversioned dir holding single-ink refill
// entries is refused rather than stamped.
func (g *Disk) Ensure() error {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return err
	}
	for _, r := range model.Resources {
		if g.d.Has(r) {
			continue
		}
		if err := g.write(r, []any{}); err != nil {
			return fmt.Errorf("init %s: %w", FileName(r), err)
		}
	}
	meta := strings.TrimSuffix(MetaFile, ".json")
	if !g.d.Has(meta) {
		if err := g.checkLegacyRefills(); err != nil {
			return err
		}
		if err := g.write(meta, Meta{SchemaVersion: SchemaVersion}); err != nil {
			return fmt.Errorf("init %s: %w", MetaFile, err)
		}
	}
	return nil
}

// LoadAll reads the three collections. A missing file reads as empty.
func (g *Disk) LoadAll(ctx context.Context) (model.Collections, error) {
	if err := ctx.Err(); err != nil {
		return model.Collections{}, err
	}
	if err := g.checkMeta(); err != nil {
		return model.Collections{}, err
	}
	var c model.Collections
	if err := g.read(model.ResourceInks, &c.Inks); err != nil {
		return model.Collections{}, err
	}
	if err := g.read(model.ResourcePens, &c.Pens); err != nil {
		return model.Collections{}, err
	}
	if err := g.read(model.ResourceRefillLog, &c.RefillLog); err != nil {
		return model.Collections{}, err
	}
	return c.Clone(), nil
}

// ReadRaw returns the stored bytes of one collection.
func (g *Disk) ReadRaw(name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	b, err := g.d.Read(name)
	if errors.Is(err, fs.ErrNotExist) {
		return []byte("[]\n"), nil
	}
	return b, err
}

// SaveCollection fully replaces the named collection.
func (g *Disk) SaveCollection(ctx context.Context, name string, data any) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !isJSONArray(data) {
		return ErrInvalidData
	}
	return g.write(name, data)
}

func (g *Disk) write(key string, data any) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')

	mu := g.locks[key]
	mu.Lock()
	defer mu.Unlock()
	return g.d.WriteStream(key, bytes.NewReader(b), true)
}

func (g *Disk) read(name string, into any) error {
	b, err := g.d.Read(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, into); err != nil {
		return fmt.Errorf("decode %s: %w", FileName(name), err)
	}
	return nil
}

func (g *Disk) checkMeta() error {
	b, err := g.d.Read(strings.TrimSuffix(MetaFile, ".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return g.checkLegacyRefills()
	}
	if err != nil {
		return err
	}
	var m Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return fmt.Errorf("decode %s: %w", MetaFile, err)
	}
	if m.SchemaVersion > SchemaVersion {
		return fmt.Errorf("%w: %d (supported: %d)", ErrUnsupportedSchema, m.SchemaVersion, SchemaVersion)
	}
	return nil
}

// checkLegacyRefills rejects refill entries that carry the old single
// inkId field and no inkIds. Decode errors are left for LoadAll to report.
func (g *Disk) checkLegacyRefills() error {
	b, err := g.d.Read(model.ResourceRefillLog)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var entries []map[string]json.RawMessage
	if json.Unmarshal(b, &entries) != nil {
		return nil
	}
	for i, e := range entries {
		_, single := e["inkId"]
		_, multi := e["inkIds"]
		if single && !multi {
			return fmt.Errorf("%w: %s entry %d has inkId without inkIds", ErrUnsupportedSchema, FileName(model.ResourceRefillLog), i)
		}
	}
	return nil
}

func isJSONArray(data any) bool {
	switch v := data.(type) {
	case nil:
		return false
	case json.RawMessage:
		return bytes.HasPrefix(bytes.TrimSpace(v), []byte("["))
	case []byte:
		return false
	}
	b, err := json.Marshal(data)
	if err != nil {
		return false
	}
	return bytes.HasPrefix(b, []byte("["))
}

func keyToPath(key string) *diskv.PathKey {
	return &diskv.PathKey{Path: []string{}, FileName: key + ".json"}
}

func pathToKey(pk *diskv.PathKey) string {
	return strings.TrimSuffix(pk.FileName, ".json")
}
