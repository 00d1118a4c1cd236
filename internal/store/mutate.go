package store

import (
	"fmt"
	"strings"

	"inkwell-cli/internal/model"
)

// CreatePen appends p with a fresh id and returns the stored record.
func (s *Store) CreatePen(p model.Pen) model.Pen {
	s.mu.Lock()
	p.ID = s.newID()
	s.pens = append(s.pens, p)
	s.reindex()
	s.mu.Unlock()
	s.dirty.Mark()
	return p
}

func (s *Store) CreateInk(i model.Ink) model.Ink {
	s.mu.Lock()
	i.ID = s.newID()
	s.inks = append(s.inks, i)
	s.reindex()
	s.mu.Unlock()
	s.dirty.Mark()
	return i
}

func (s *Store) CreateRefill(e model.RefillLogEntry) model.RefillLogEntry {
	e = e.Clone()
	s.mu.Lock()
	e.ID = s.newID()
	s.refills = append(s.refills, e)
	s.reindex()
	s.mu.Unlock()
	s.dirty.Mark()
	return e.Clone()
}

// UpdatePen replaces the pen with p.ID. Unknown ids fail with ErrNotFound.
func (s *Store) UpdatePen(p model.Pen) (model.Pen, error) {
	s.mu.Lock()
	i, ok := s.penIdx[p.ID]
	if !ok {
		s.mu.Unlock()
		return model.Pen{}, errNotFound("pen", p.ID)
	}
	s.pens[i] = p
	s.mu.Unlock()
	s.dirty.Mark()
	return p, nil
}

func (s *Store) UpdateInk(ink model.Ink) (model.Ink, error) {
	s.mu.Lock()
	i, ok := s.inkIdx[ink.ID]
	if !ok {
		s.mu.Unlock()
		return model.Ink{}, errNotFound("ink", ink.ID)
	}
	s.inks[i] = ink
	s.mu.Unlock()
	s.dirty.Mark()
	return ink, nil
}

func (s *Store) UpdateRefill(e model.RefillLogEntry) (model.RefillLogEntry, error) {
	e = e.Clone()
	s.mu.Lock()
	i, ok := s.refillIdx[e.ID]
	if !ok {
		s.mu.Unlock()
		return model.RefillLogEntry{}, errNotFound("refill", e.ID)
	}
	s.refills[i] = e
	s.mu.Unlock()
	s.dirty.Mark()
	return e.Clone(), nil
}

// DeletePen removes one pen. Refill entries pointing at it are left alone.
func (s *Store) DeletePen(id string) error {
	s.mu.Lock()
	i, ok := s.penIdx[id]
	if !ok {
		s.mu.Unlock()
		return errNotFound("pen", id)
	}
	s.pens = append(s.pens[:i:i], s.pens[i+1:]...)
	s.reindex()
	s.mu.Unlock()
	s.dirty.Mark()
	return nil
}

// DeleteInk removes one ink. Refill entries keep the dangling id.
func (s *Store) DeleteInk(id string) error {
	s.mu.Lock()
	i, ok := s.inkIdx[id]
	if !ok {
		s.mu.Unlock()
		return errNotFound("ink", id)
	}
	s.inks = append(s.inks[:i:i], s.inks[i+1:]...)
	s.reindex()
	s.mu.Unlock()
	s.dirty.Mark()
	return nil
}

func (s *Store) DeleteRefill(id string) error {
	s.mu.Lock()
	i, ok := s.refillIdx[id]
	if !ok {
		s.mu.Unlock()
		return errNotFound("refill", id)
	}
	s.refills = append(s.refills[:i:i], s.refills[i+1:]...)
	s.reindex()
	s.mu.Unlock()
	s.dirty.Mark()
	return nil
}

// Replace swaps one whole collection for the matching slice of c.
// Refill entries without an id get one, as in Load.
func (s *Store) Replace(c model.Collections, resource string) error {
	c = c.Clone()
	s.mu.Lock()
	switch resource {
	case model.ResourcePens:
		s.pens = c.Pens
	case model.ResourceInks:
		s.inks = c.Inks
	case model.ResourceRefillLog:
		for i := range c.RefillLog {
			if strings.TrimSpace(c.RefillLog[i].ID) == "" {
				c.RefillLog[i].ID = s.newID()
			}
		}
		s.refills = c.RefillLog
	default:
		s.mu.Unlock()
		return fmt.Errorf("unknown resource %q", resource)
	}
	s.reindex()
	s.loaded = true
	s.mu.Unlock()
	s.dirty.Mark()
	return nil
}
