package store

import "sync"

// Dirty is the process-wide "unpublished changes exist" flag.
// Each subscriber holds at most one pending value: a flip that lands before
// the previous one was read replaces it, so the latest state always arrives.
type Dirty struct {
	mu    sync.Mutex
	dirty bool
	subs  map[chan bool]struct{}
}

func NewDirty() *Dirty {
	return &Dirty{subs: map[chan bool]struct{}{}}
}

func (d *Dirty) Dirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dirty
}

func (d *Dirty) Mark()  { d.set(true) }
func (d *Dirty) Clear() { d.set(false) }

func (d *Dirty) set(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dirty == v {
		return
	}
	d.dirty = v
	for ch := range d.subs {
		select {
		case ch <- v:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
}

// Subscribe returns a channel of flag changes and a cancel func that must be called.
func (d *Dirty) Subscribe() (<-chan bool, func()) {
	ch := make(chan bool, 1)
	d.mu.Lock()
	d.subs[ch] = struct{}{}
	d.mu.Unlock()
	return ch, func() {
		d.mu.Lock()
		if _, ok := d.subs[ch]; ok {
			delete(d.subs, ch)
			close(ch)
		}
		d.mu.Unlock()
	}
}
