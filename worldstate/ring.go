package worldstate

import "sync"

// SnapshotRing is a bounded tick-keyed snapshot history for rollback.
// Insertion order is preserved; once the configured capacity is exceeded,
// the oldest inserted tick is evicted, independent of tick value.
type SnapshotRing struct {
	mu           sync.Mutex
	order        []int32
	snapshots    map[int32]Snapshot
	maxSnapshots int
}

// NewSnapshotRing returns a ring bounded to maxSnapshots entries (clamped
// to at least 1).
func NewSnapshotRing(maxSnapshots int) *SnapshotRing {
	if maxSnapshots < 1 {
		maxSnapshots = 1
	}
	return &SnapshotRing{
		snapshots:    make(map[int32]Snapshot),
		maxSnapshots: maxSnapshots,
	}
}

// Save stores snap, evicting the oldest insertion if the ring is full.
// Re-saving an existing tick updates its bytes without changing its
// eviction order.
func (r *SnapshotRing) Save(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.snapshots[snap.Tick]; !exists {
		r.order = append(r.order, snap.Tick)
	}
	r.snapshots[snap.Tick] = snap
	for len(r.order) > r.maxSnapshots {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.snapshots, oldest)
	}
}

// Get returns the snapshot stored at exactly tick, if present.
func (r *SnapshotRing) Get(tick int32) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.snapshots[tick]
	return snap, ok
}

// NearestAtOrBefore returns the snapshot with the greatest tick <= tick.
func (r *SnapshotRing) NearestAtOrBefore(tick int32) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best Snapshot
	found := false
	for _, t := range r.order {
		if t <= tick && (!found || t > best.Tick) {
			best = r.snapshots[t]
			found = true
		}
	}
	return best, found
}

// ClearAfter removes every snapshot with tick strictly greater than tick.
func (r *SnapshotRing) ClearAfter(tick int32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.order[:0]
	for _, t := range r.order {
		if t > tick {
			delete(r.snapshots, t)
			continue
		}
		kept = append(kept, t)
	}
	r.order = kept
}

// ClearAll empties the ring.
func (r *SnapshotRing) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = nil
	r.snapshots = make(map[int32]Snapshot)
}

// Len reports the number of snapshots currently retained.
func (r *SnapshotRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}
