// Package inventory ties the in-memory store to a persistence gateway.
// Mutations are applied optimistically, then the whole affected collection
// is saved; failures are reported to the notifier and returned.
package inventory

import (
	"context"
	"fmt"
	"sync"

	"inkwell-cli/internal/gateway"
	"inkwell-cli/internal/history"
	"inkwell-cli/internal/model"
	"inkwell-cli/internal/store"
)

type Session struct {
	Store    *store.Store
	gw       gateway.Gateway
	notifier gateway.Notifier
	journal  history.Recorder

	mu      sync.Mutex
	loadErr error

	// saveMu holds one lock per resource across snapshot and write, so the
	// last write to land carries the newest collection.
	saveMu map[string]*sync.Mutex
}

type Option func(*Session)

func WithNotifier(n gateway.Notifier) Option {
	return func(s *Session) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithJournal(r history.Recorder) Option {
	return func(s *Session) {
		if r != nil {
			s.journal = r
		}
	}
}

// WithStore replaces the default store (shared dirty tracker, fixed ids in tests).
func WithStore(st *store.Store) Option {
	return func(s *Session) {
		if st != nil {
			s.Store = st
		}
	}
}

func New(gw gateway.Gateway, opts ...Option) *Session {
	s := &Session{
		Store:    store.New(),
		gw:       gw,
		notifier: gateway.Discard,
		journal:  history.Nop,
		saveMu:   map[string]*sync.Mutex{},
	}
	for _, r := range model.Resources {
		s.saveMu[r] = &sync.Mutex{}
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Open loads every collection once. On failure the store stays empty,
// LoadErr reports the cause and the error is returned; there is no retry.
func (s *Session) Open(ctx context.Context) error {
	c, err := s.gw.LoadAll(ctx)
	if err != nil {
		err = fmt.Errorf("load collections: %w", err)
		s.mu.Lock()
		s.loadErr = err
		s.mu.Unlock()
		s.notifier.Notify(gateway.Notice{Kind: gateway.NoticeError, Message: "Failed to load data", Err: err})
		return err
	}
	if err := s.Store.Load(c); err != nil {
		return err
	}
	s.mu.Lock()
	s.loadErr = nil
	s.mu.Unlock()
	return nil
}

func (s *Session) LoadErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadErr
}

func (s *Session) Snapshot() model.Collections { return s.Store.Snapshot() }

func (s *Session) Dirty() *store.Dirty { return s.Store.DirtyTracker() }

func (s *Session) AddPen(ctx context.Context, p model.Pen) (model.Pen, error) {
	if err := model.ValidatePen(p); err != nil {
		return model.Pen{}, err
	}
	p = s.Store.CreatePen(p)
	return p, s.save(ctx, model.ResourcePens)
}

func (s *Session) EditPen(ctx context.Context, p model.Pen) (model.Pen, error) {
	if err := model.ValidatePen(p); err != nil {
		return model.Pen{}, err
	}
	p, err := s.Store.UpdatePen(p)
	if err != nil {
		return model.Pen{}, err
	}
	return p, s.save(ctx, model.ResourcePens)
}

func (s *Session) RemovePen(ctx context.Context, id string) error {
	if err := s.Store.DeletePen(id); err != nil {
		return err
	}
	return s.save(ctx, model.ResourcePens)
}

func (s *Session) AddInk(ctx context.Context, i model.Ink) (model.Ink, error) {
	if err := model.ValidateInk(i); err != nil {
		return model.Ink{}, err
	}
	i = s.Store.CreateInk(i)
	return i, s.save(ctx, model.ResourceInks)
}

func (s *Session) EditInk(ctx context.Context, i model.Ink) (model.Ink, error) {
	if err := model.ValidateInk(i); err != nil {
		return model.Ink{}, err
	}
	i, err := s.Store.UpdateInk(i)
	if err != nil {
		return model.Ink{}, err
	}
	return i, s.save(ctx, model.ResourceInks)
}

func (s *Session) RemoveInk(ctx context.Context, id string) error {
	if err := s.Store.DeleteInk(id); err != nil {
		return err
	}
	return s.save(ctx, model.ResourceInks)
}

func (s *Session) AddRefill(ctx context.Context, e model.RefillLogEntry) (model.RefillLogEntry, error) {
	if err := model.ValidateRefill(e); err != nil {
		return model.RefillLogEntry{}, err
	}
	e = s.Store.CreateRefill(e)
	return e, s.save(ctx, model.ResourceRefillLog)
}

func (s *Session) EditRefill(ctx context.Context, e model.RefillLogEntry) (model.RefillLogEntry, error) {
	if err := model.ValidateRefill(e); err != nil {
		return model.RefillLogEntry{}, err
	}
	e, err := s.Store.UpdateRefill(e)
	if err != nil {
		return model.RefillLogEntry{}, err
	}
	return e, s.save(ctx, model.ResourceRefillLog)
}

func (s *Session) RemoveRefill(ctx context.Context, id string) error {
	if err := s.Store.DeleteRefill(id); err != nil {
		return err
	}
	return s.save(ctx, model.ResourceRefillLog)
}

// Replace overwrites one whole collection in memory and on the gateway.
// Snapshot restore uses it.
func (s *Session) Replace(ctx context.Context, c model.Collections, resource string) error {
	if err := gateway.ValidateName(resource); err != nil {
		return err
	}
	if err := s.Store.Replace(c, resource); err != nil {
		return err
	}
	return s.save(ctx, resource)
}

func (s *Session) save(ctx context.Context, resource string) error {
	mu := s.saveMu[resource]
	mu.Lock()
	data := s.Store.Snapshot().Resource(resource)
	err := s.gw.SaveCollection(ctx, resource, data)
	mu.Unlock()

	ev := history.Event{Kind: history.KindSave, Resource: resource, OK: err == nil}
	if err != nil {
		err = fmt.Errorf("save %s: %w", resource, err)
		ev.Detail = err.Error()
		s.notifier.Notify(gateway.Notice{Kind: gateway.NoticeError, Resource: resource, Message: "Failed to save " + resource, Err: err})
	} else {
		s.notifier.Notify(gateway.Notice{Kind: gateway.NoticeSuccess, Resource: resource, Message: "Saved " + resource})
	}
	if jerr := s.journal.Record(ctx, ev); jerr != nil {
		s.notifier.Notify(gateway.Notice{Kind: gateway.NoticeError, Resource: resource, Message: "Failed to record history", Err: jerr})
	}
	return err
}
