// Package toolctx holds the key/value state tools share within and across
// turns. A check_availability call in one turn leaves its result here for a
// make_reservation call in a later turn; nothing else survives the bounded
// history window.
package toolctx

import "sync"

// AvailabilityKey is the slot written by the availability tool and read by
// the reservation tool.
const AvailabilityKey = "availability"

// RecognizedKeys lists the slots that persist across turns. Anything else a
// tool sets is dropped at the turn boundary; this narrow persistence contract
// is deliberate.
var RecognizedKeys = []string{AvailabilityKey}

// Store is the per-turn tool context. It is re-seeded from the session
// snapshot at the start of each turn and snapshotted back afterwards.
type Store struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewStore returns an empty tool context store.
func NewStore() *Store {
	return &Store{data: make(map[string]any)}
}

// Set records a value for a slot. Last write wins; no history is retained.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Get returns the last-known value for a slot, or nil when absent.
func (s *Store) Get(key string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[key]
}

// Restore seeds the store from a persisted snapshot. Only non-nil values
// overwrite; a nil slot never clobbers state set earlier in the same turn.
func (s *Store) Restore(snapshot map[string]any) {
	if snapshot == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, value := range snapshot {
		if value != nil {
			s.data[key] = value
		}
	}
}

// Snapshot captures the recognized slots for session persistence. Keys
// outside RecognizedKeys are intentionally not included.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(RecognizedKeys))
	for _, key := range RecognizedKeys {
		out[key] = s.data[key]
	}
	return out
}
