// Package progress keeps an append-only event log per production run. The
// tracker does not interpret stage names and is not the system of record for
// run outcome; it only exists so polling clients can watch a long operation.
package progress

import (
	"sync"
	"time"
)

// Event is one recorded progress update.
type Event struct {
	Stage     string    `json:"stage"`
	Percent   int       `json:"percent"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is the injectable log backend. Implementations must preserve append
// order per run id and tolerate concurrent appends.
type Store interface {
	Append(runID string, ev Event)
	Latest(runID string) (Event, bool)
	History(runID string) []Event
	Drop(runID string)
}

// Tracker clamps and records progress events against a Store.
type Tracker struct {
	store Store
}

// NewTracker wraps the given store; a nil store gets an in-memory one.
func NewTracker(store Store) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Tracker{store: store}
}

// Update appends an event for the run, clamping percent to [0,100].
func (t *Tracker) Update(runID, stage string, percent int, message string) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	t.store.Append(runID, Event{
		Stage:     stage,
		Percent:   percent,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

// Latest returns the most recent event for the run.
func (t *Tracker) Latest(runID string) (Event, bool) {
	return t.store.Latest(runID)
}

// History returns the full event log for the run in append order.
func (t *Tracker) History(runID string) []Event {
	return t.store.History(runID)
}

// Drop forgets the run's log.
func (t *Tracker) Drop(runID string) {
	t.store.Drop(runID)
}

// MemoryStore is the in-process Store used for single-instance deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[string][]Event
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{logs: make(map[string][]Event)}
}

func (s *MemoryStore) Append(runID string, ev Event) {
	s.mu.Lock()
	s.logs[runID] = append(s.logs[runID], ev)
	s.mu.Unlock()
}

func (s *MemoryStore) Latest(runID string) (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[runID]
	if len(log) == 0 {
		return Event{}, false
	}
	return log[len(log)-1], true
}

func (s *MemoryStore) History(runID string) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[runID]
	out := make([]Event, len(log))
	copy(out, log)
	return out
}

func (s *MemoryStore) Drop(runID string) {
	s.mu.Lock()
	delete(s.logs, runID)
	s.mu.Unlock()
}

var _ Store = (*MemoryStore)(nil)
