package worldstate

const (
	fnvOffset uint64 = 14695981039346656037
	fnvPrime  uint64 = 1099511628211
)

// mixU64 folds a full 64-bit value into an FNV-1a accumulator by XORing
// only its low byte before the multiply, rather than all eight bytes. This
// is not canonical FNV-1a; it is retained deliberately so recorded replay
// hashes stay reproducible (see DESIGN.md's open-question entry).
func mixU64(hash, v uint64) uint64 {
	hash ^= v & 0xFF
	hash *= fnvPrime
	return hash
}

// Hash folds (tick, entityCount, then each entity's hash sorted by
// entityId ascending) via mixU64. Sorting by entityId is the sole safeguard
// against iteration-order nondeterminism; permuting insertion order must not
// change the result.
func (w *World) Hash() uint64 {
	hash := fnvOffset
	hash = mixU64(hash, uint64(uint32(w.tick)))
	hash = mixU64(hash, uint64(w.Count()))
	for _, entity := range w.EntitiesSortedByID() {
		hash = mixU64(hash, entity.Hash())
	}
	return hash
}
