package store

import (
	"strings"
	"sync"

	"inkwell-cli/internal/model"
)

// Store holds the in-memory pens, inks and refill log. It knows nothing about
// persistence; callers save the affected collection after a mutation.
type Store struct {
	mu     sync.RWMutex
	loaded bool

	pens    []model.Pen
	inks    []model.Ink
	refills []model.RefillLogEntry

	// id -> position, rebuilt whenever a collection changes shape.
	penIdx    map[string]int
	inkIdx    map[string]int
	refillIdx map[string]int

	dirty *Dirty
	newID func() string
}

type Option func(*Store)

// WithDirty shares a dirty tracker (e.g. with a web server or a review workflow).
func WithDirty(d *Dirty) Option {
	return func(s *Store) { s.dirty = d }
}

// WithIDFunc overrides id generation (tests).
func WithIDFunc(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func New(opts ...Option) *Store {
	s := &Store{
		pens:    []model.Pen{},
		inks:    []model.Ink{},
		refills: []model.RefillLogEntry{},
		newID:   newID,
	}
	for _, o := range opts {
		o(s)
	}
	if s.dirty == nil {
		s.dirty = NewDirty()
	}
	s.reindex()
	return s
}

// Load seeds the store. It may only succeed once per Store.
// Refill entries without an id (older data) get one assigned.
func (s *Store) Load(c model.Collections) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return ErrAlreadyLoaded
	}
	c = c.Clone()
	for i := range c.RefillLog {
		if strings.TrimSpace(c.RefillLog[i].ID) == "" {
			c.RefillLog[i].ID = s.newID()
		}
	}
	s.pens, s.inks, s.refills = c.Pens, c.Inks, c.RefillLog
	s.reindex()
	s.loaded = true
	return nil
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) DirtyTracker() *Dirty { return s.dirty }

// Snapshot returns a deep copy of every collection.
func (s *Store) Snapshot() model.Collections {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Collections{Pens: s.pens, Inks: s.inks, RefillLog: s.refills}.Clone()
}

func (s *Store) Pens() []model.Pen {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Pen{}, s.pens...)
}

func (s *Store) Inks() []model.Ink {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Ink{}, s.inks...)
}

func (s *Store) Refills() []model.RefillLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.RefillLogEntry, len(s.refills))
	for i, e := range s.refills {
		out[i] = e.Clone()
	}
	return out
}

func (s *Store) Pen(id string) (model.Pen, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.penIdx[id]; ok {
		return s.pens[i], true
	}
	return model.Pen{}, false
}

func (s *Store) Ink(id string) (model.Ink, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.inkIdx[id]; ok {
		return s.inks[i], true
	}
	return model.Ink{}, false
}

func (s *Store) Refill(id string) (model.RefillLogEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.refillIdx[id]; ok {
		return s.refills[i].Clone(), true
	}
	return model.RefillLogEntry{}, false
}

// RefillViews returns the refill log with pens and inks joined by value.
func (s *Store) RefillViews() []model.RefillLogView {
	return JoinRefills(s.Snapshot())
}

// JoinRefills resolves every refill's pen and inks. Missing records stay nil.
func JoinRefills(c model.Collections) []model.RefillLogView {
	pens := make(map[string]model.Pen, len(c.Pens))
	for _, p := range c.Pens {
		pens[p.ID] = p
	}
	inks := make(map[string]model.Ink, len(c.Inks))
	for _, i := range c.Inks {
		inks[i.ID] = i
	}

	out := make([]model.RefillLogView, 0, len(c.RefillLog))
	for _, e := range c.RefillLog {
		v := model.RefillLogView{RefillLogEntry: e.Clone(), Inks: make([]model.InkRef, 0, len(e.InkIDs))}
		if p, ok := pens[e.PenID]; ok {
			p := p
			v.Pen = &p
		}
		for _, id := range e.InkIDs {
			ref := model.InkRef{ID: id}
			if ink, ok := inks[id]; ok {
				ink := ink
				ref.Ink = &ink
			}
			v.Inks = append(v.Inks, ref)
		}
		out = append(out, v)
	}
	return out
}

// reindex rebuilds the id maps. Callers hold s.mu for writing.
func (s *Store) reindex() {
	s.penIdx = indexByID(s.pens, penID)
	s.inkIdx = indexByID(s.inks, inkID)
	s.refillIdx = indexByID(s.refills, refillID)
}

// indexByID maps each id to its first position.
func indexByID[T any](items []T, idOf func(T) string) map[string]int {
	m := make(map[string]int, len(items))
	for i := range items {
		if _, dup := m[idOf(items[i])]; !dup {
			m[idOf(items[i])] = i
		}
	}
	return m
}

func penID(p model.Pen) string               { return p.ID }
func inkID(i model.Ink) string               { return i.ID }
func refillID(e model.RefillLogEntry) string { return e.ID }
