package worldstate

import (
	"sort"
	"strconv"

	"github.com/iancoleman/orderedmap"
)

// World is the ordered set of entities keyed by entityId, plus the
// monotonic id allocator and current tick. Insertion order is preserved (it
// only matters for Serialize's byte layout; Hash always sorts by
// entityId first, per the sort-stable hashing invariant).
type World struct {
	entities      *orderedmap.OrderedMap
	nextEntityID  int32
	tick          int32
	factories     *FactoryRegistry
}

// NewWorld returns an empty world using the provided factory registry for
// snapshot restoration.
func NewWorld(factories *FactoryRegistry) *World {
	if factories == nil {
		factories = NewFactoryRegistry()
	}
	return &World{
		entities:  orderedmap.New(),
		factories: factories,
	}
}

// Tick returns the world's current tick.
func (w *World) Tick() int32 { return w.tick }

// SetTick overwrites the current tick (used by snapshot restore).
func (w *World) SetTick(tick int32) { w.tick = tick }

// AdvanceTick increments the tick by one.
func (w *World) AdvanceTick() { w.tick++ }

// NextEntityID returns the id that the next Spawn call will allocate.
func (w *World) NextEntityID() int32 { return w.nextEntityID }

// SetNextEntityID overwrites the id allocator (used by snapshot restore).
func (w *World) SetNextEntityID(next int32) { w.nextEntityID = next }

func entityKey(entityID int32) string {
	return strconv.FormatInt(int64(entityID), 10)
}

// Spawn allocates a fresh entityId, constructs an entity of typeID via the
// factory registry, inserts it, and returns it.
func (w *World) Spawn(ownerID, typeID int32) (Entity, error) {
	entityID := w.nextEntityID
	entity, err := w.factories.Create(entityID, ownerID, typeID)
	if err != nil {
		return nil, err
	}
	w.nextEntityID++
	w.entities.Set(entityKey(entityID), entity)
	return entity, nil
}

// Insert adds an already-constructed entity directly, without allocating a
// new id. Used by snapshot restore.
func (w *World) Insert(entity Entity) {
	w.entities.Set(entityKey(entity.EntityID()), entity)
}

// Remove deletes the entity with the given id, if present.
func (w *World) Remove(entityID int32) {
	w.entities.Delete(entityKey(entityID))
}

// Get returns the entity with the given id, if present.
func (w *World) Get(entityID int32) (Entity, bool) {
	v, ok := w.entities.Get(entityKey(entityID))
	if !ok {
		return nil, false
	}
	return v.(Entity), true
}

// Count returns the number of entities currently in the world.
func (w *World) Count() int {
	return len(w.entities.Keys())
}

// Entities returns every entity in current insertion order.
func (w *World) Entities() []Entity {
	keys := w.entities.Keys()
	out := make([]Entity, 0, len(keys))
	for _, k := range keys {
		v, _ := w.entities.Get(k)
		out = append(out, v.(Entity))
	}
	return out
}

// EntitiesSortedByID returns every entity sorted by ascending entityId. This
// is the sole safeguard against iteration-order nondeterminism in Hash.
func (w *World) EntitiesSortedByID() []Entity {
	out := w.Entities()
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID() < out[j].EntityID() })
	return out
}

// EntityIDs returns the set of ids currently present, for snapshot restore's
// present/removed bookkeeping.
func (w *World) EntityIDs() map[int32]struct{} {
	keys := w.entities.Keys()
	out := make(map[int32]struct{}, len(keys))
	for _, k := range keys {
		id, _ := strconv.ParseInt(k, 10, 32)
		out[int32(id)] = struct{}{}
	}
	return out
}

// Clear empties the world and resets the id allocator and tick, used by
// Simulation.initialize.
func (w *World) Clear() {
	w.entities = orderedmap.New()
	w.nextEntityID = 0
	w.tick = 0
}
