package realtime

import (
	"sort"
	"sync"
)

// UnknownDisplayName is returned for connections that are not registered.
const UnknownDisplayName = "unknown"

// Entry tracks one live, authenticated connection.
type Entry struct {
	ConnectionID string
	IdentityID   string
	DisplayName  string

	seq uint64
}

// Registry is a concurrency-safe map from connection id to the identity
// behind it. The lock is held for a single operation only.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	seq     uint64
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Add inserts or replaces the entry for connectionID. A replaced entry keeps
// its original position in snapshots.
func (r *Registry) Add(connectionID, identityID, displayName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e := Entry{ConnectionID: connectionID, IdentityID: identityID, DisplayName: displayName}
	if prev, ok := r.entries[connectionID]; ok {
		e.seq = prev.seq
	} else {
		r.seq++
		e.seq = r.seq
	}
	r.entries[connectionID] = e
}

// Remove deletes the entry for connectionID. Unknown ids are ignored.
func (r *Registry) Remove(connectionID string) {
	r.mu.Lock()
	delete(r.entries, connectionID)
	r.mu.Unlock()
}

// Snapshot returns a point-in-time copy of all entries in registration order.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// DisplayNameFor returns the display name registered for connectionID, or
// UnknownDisplayName and false when it is not registered.
func (r *Registry) DisplayNameFor(connectionID string) (string, bool) {
	r.mu.RLock()
	e, ok := r.entries[connectionID]
	r.mu.RUnlock()
	if !ok {
		return UnknownDisplayName, false
	}
	return e.DisplayName, true
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
