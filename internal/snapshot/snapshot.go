// Package snapshot copies the three collections into a blob store and back.
// A snapshot is the set of keys snapshots/<id>/<resource>.json, where id is
// a UTC timestamp.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"inkwell-cli/internal/gateway"
	"inkwell-cli/internal/model"
)

const (
	prefix   = "snapshots/"
	idLayout = "20060102T150405Z"
)

// Snapshot is one stored copy of the collections.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Resources []string  `json:"resources"`
	Size      int64     `json:"size"`
}

// Create writes every collection under a new id stamped from now.
func Create(ctx context.Context, b Blobs, gw gateway.Gateway, now time.Time) (Snapshot, error) {
	c, err := gw.LoadAll(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: %w", err)
	}
	id := now.UTC().Format(idLayout)
	snap := Snapshot{ID: id, CreatedAt: now.UTC().Truncate(time.Second)}
	for _, name := range model.Resources {
		data, err := json.MarshalIndent(c.Resource(name), "", "  ")
		if err != nil {
			return Snapshot{}, err
		}
		info, err := b.Put(ctx, key(id, name), bytes.NewReader(append(data, '\n')))
		if err != nil {
			return Snapshot{}, fmt.Errorf("snapshot %s/%s: %w", id, name, err)
		}
		snap.Resources = append(snap.Resources, name)
		snap.Size += info.Size
	}
	return snap, nil
}

// List groups stored keys into snapshots, newest first.
func List(ctx context.Context, b Blobs) ([]Snapshot, error) {
	infos, err := b.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	byID := map[string]*Snapshot{}
	for _, in := range infos {
		id, file, ok := strings.Cut(strings.TrimPrefix(in.Key, prefix), "/")
		if !ok || !strings.HasSuffix(file, ".json") {
			continue
		}
		created, err := time.Parse(idLayout, id)
		if err != nil {
			continue
		}
		s := byID[id]
		if s == nil {
			s = &Snapshot{ID: id, CreatedAt: created}
			byID[id] = s
		}
		s.Resources = append(s.Resources, gateway.ResourceName(file))
		s.Size += in.Size
	}
	out := make([]Snapshot, 0, len(byID))
	for _, s := range byID {
		sort.Strings(s.Resources)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Load reads a snapshot back. A resource missing from the snapshot loads empty.
func Load(ctx context.Context, b Blobs, id string) (model.Collections, error) {
	if _, err := time.Parse(idLayout, id); err != nil {
		return model.Collections{}, fmt.Errorf("invalid snapshot id %q", id)
	}
	var c model.Collections
	found := 0
	targets := map[string]any{
		model.ResourceInks:      &c.Inks,
		model.ResourcePens:      &c.Pens,
		model.ResourceRefillLog: &c.RefillLog,
	}
	for _, name := range model.Resources {
		rc, err := b.Get(ctx, key(id, name))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return model.Collections{}, err
		}
		err = json.NewDecoder(rc).Decode(targets[name])
		_ = rc.Close()
		if err != nil {
			return model.Collections{}, fmt.Errorf("decode snapshot %s/%s: %w", id, name, err)
		}
		found++
	}
	if found == 0 {
		return model.Collections{}, fmt.Errorf("snapshot %s: %w", id, ErrNotFound)
	}
	return c.Clone(), nil
}

// Restore writes every collection of a snapshot back through gw.
func Restore(ctx context.Context, b Blobs, gw gateway.Gateway, id string) error {
	c, err := Load(ctx, b, id)
	if err != nil {
		return err
	}
	for _, name := range model.Resources {
		if err := gw.SaveCollection(ctx, name, c.Resource(name)); err != nil {
			return fmt.Errorf("restore %s: %w", name, err)
		}
	}
	return nil
}

func key(id, resource string) string {
	return prefix + id + "/" + gateway.FileName(resource)
}
