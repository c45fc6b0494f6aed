package entity

import "sync"

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}

// Store is the authoritative in-memory mirror of remote entity state.
//
// It holds at most one snapshot per identifier; applying a snapshot for
// a known identifier fully replaces the previous one (last-write-wins,
// no partial merge). Entities are never removed: stale identifiers
// persist until the process restarts. A hub removal signal, if one is
// ever introduced, would call remove.
//
// The transport dispatch path is the single writer; reads can come from
// any goroutine.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
	logger    Logger
}

// NewStore creates an empty entity store.
func NewStore() *Store {
	return &Store{
		snapshots: make(map[string]*Snapshot),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.logger = logger
}

// Apply stores a snapshot, unconditionally replacing any previous
// snapshot for the same identifier. O(1); no side effects beyond the
// mapping update.
func (s *Store) Apply(snap *Snapshot) {
	if snap == nil || snap.EntityID == "" {
		return
	}
	stored := snap.DeepCopy()

	s.mu.Lock()
	s.snapshots[stored.EntityID] = stored
	s.mu.Unlock()

	s.logger.Debug("snapshot applied", "entity_id", stored.EntityID, "state", stored.State)
}

// ApplyBulk applies a sequence of snapshots in order. Used for the
// first-load bulk result; later entries win over earlier ones for the
// same identifier.
func (s *Store) ApplyBulk(snaps []Snapshot) {
	s.mu.Lock()
	for i := range snaps {
		snap := &snaps[i]
		if snap.EntityID == "" {
			continue
		}
		s.snapshots[snap.EntityID] = snap.DeepCopy()
	}
	s.mu.Unlock()

	s.logger.Info("bulk snapshot applied", "count", len(snaps))
}

// Get retrieves the latest snapshot for an identifier.
// The returned snapshot is a deep copy; callers can safely hold it.
func (s *Store) Get(id string) (*Snapshot, bool) {
	s.mu.RLock()
	snap, ok := s.snapshots[id]
	s.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return snap.DeepCopy(), true
}

// All returns deep copies of every stored snapshot, in no particular order.
func (s *Store) All() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Snapshot, 0, len(s.snapshots))
	for _, snap := range s.snapshots {
		out = append(out, *snap.DeepCopy())
	}
	return out
}

// IDs returns the identifiers of every stored snapshot.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		out = append(out, id)
	}
	return out
}

// Len returns the number of stored snapshots.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// remove deletes a snapshot. Unexported: the hub protocol has no removal
// signal today; this is the extension point for one.
func (s *Store) remove(id string) {
	s.mu.Lock()
	delete(s.snapshots, id)
	s.mu.Unlock()
}
