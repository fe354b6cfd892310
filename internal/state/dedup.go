package state

import "sync"

// Dedup tracks post identifiers that have already been through the pipeline,
// regardless of outcome. The set only grows; an id is never forgotten for the
// lifetime of the process, which is what keeps permanently-unparseable posts
// from being retried forever.
type Dedup struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewDedup builds an empty tracker.
func NewDedup() *Dedup {
	return &Dedup{ids: map[string]struct{}{}}
}

// Seen reports whether the id was already processed.
func (d *Dedup) Seen(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.ids[id]
	return ok
}

// MarkSeen records the id. Marking an id twice is a no-op.
func (d *Dedup) MarkSeen(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids[id] = struct{}{}
}

// Len returns the number of distinct ids ever observed.
func (d *Dedup) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.ids)
}
