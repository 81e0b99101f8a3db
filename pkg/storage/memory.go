package storage

import "sync"

// MemoryStore keeps the latest snapshot per group in memory. Suitable for
// single-instance deployments; data is lost on restart. Safe for concurrent
// use (the control loop writes while HTTP handlers read).
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snapshots: make(map[string]Snapshot)}
}

// Put stores the snapshot as the latest for its group.
func (s *MemoryStore) Put(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.Group] = snap
	return nil
}

// GetLatest returns the latest snapshot for the group, if any.
func (s *MemoryStore) GetLatest(group string) (Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[group]
	return snap, ok, nil
}
