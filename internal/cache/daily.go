package cache

import (
	"sync"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

// Daily memoizes one value for the calendar day it was stored on. Day
// boundaries are evaluated in Location.
type Daily[T any] struct {
	mu         sync.Mutex
	value      T
	insertedAt time.Time
	filled     bool
	now        Clock
	loc        *time.Location
	filePath   string
}

// NewDaily creates a cache. A nil clock uses time.Now and a nil location uses
// time.Local. When filePath is set the entry is loaded from and saved to it.
func NewDaily[T any](now Clock, loc *time.Location, filePath string) (*Daily[T], error) {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	d := &Daily[T]{now: now, loc: loc, filePath: filePath}
	if filePath == "" {
		return d, nil
	}
	st, err := LoadState[T](filePath)
	if err != nil {
		return nil, err
	}
	if st != nil {
		d.value, d.insertedAt, d.filled = st.Value, st.InsertedAt, true
	}
	return d, nil
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// Get returns the value if it was stored today.
func (d *Daily[T]) Get() (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.filled || !SameDay(d.insertedAt, d.now(), d.loc) {
		var zero T
		return zero, false
	}
	return d.value, true
}

// Stale returns the last stored value regardless of its age.
func (d *Daily[T]) Stale() (T, time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.value, d.insertedAt, d.filled
}

// Put stores v stamped with the current time and persists it when a file is
// configured. The in-memory entry is updated even if saving fails.
func (d *Daily[T]) Put(v T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.value, d.insertedAt, d.filled = v, d.now(), true
	if d.filePath == "" {
		return nil
	}
	return SaveState(d.filePath, &State[T]{Value: v, InsertedAt: d.insertedAt})
}

// Clear drops the entry.
func (d *Daily[T]) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	var zero T
	d.value, d.insertedAt, d.filled = zero, time.Time{}, false
}
