// Package store holds the current forecast snapshot and its SQLite mirror.
package store

import (
	"github.com/ngmaloney/sunshine-terminal/internal/models"
)

// Observer is notified after the current snapshot has been replaced
type Observer interface {
	SnapshotReplaced(snapshot *models.Snapshot)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(snapshot *models.Snapshot)

// SnapshotReplaced implements Observer
func (f ObserverFunc) SnapshotReplaced(snapshot *models.Snapshot) {
	f(snapshot)
}

// Store owns the current snapshot. It is not safe for concurrent use:
// all calls belong on the UI loop, which serializes replacements.
type Store struct {
	current   *models.Snapshot
	observers map[int]Observer
	order     []int
	nextID    int
}

// New creates an empty store
func New() *Store {
	return &Store{observers: make(map[int]Observer)}
}

// Current returns the current snapshot, or nil before the first replacement
func (s *Store) Current() *models.Snapshot {
	return s.current
}

// Replace swaps in a new snapshot and notifies every observer before
// returning, so no caller can see the new snapshot without the
// notification having happened.
func (s *Store) Replace(snapshot *models.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	s.current = snapshot
	for _, id := range s.order {
		s.observers[id].SnapshotReplaced(snapshot)
	}
	return nil
}

// Subscribe registers o and returns a function that removes it.
// Observers are notified in subscription order.
func (s *Store) Subscribe(o Observer) (unsubscribe func()) {
	id := s.nextID
	s.nextID++
	s.observers[id] = o
	s.order = append(s.order, id)

	return func() {
		if _, ok := s.observers[id]; !ok {
			return
		}
		delete(s.observers, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}
