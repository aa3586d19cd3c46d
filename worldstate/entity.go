// Package worldstate holds the syncable entity set, its snapshot/restore
// model, and the content hash that detects cross-peer divergence.
package worldstate

import "lockstepd/command"

// Entity is the capability surface every syncable entity exposes. typeId is
// the single source of truth at the wire boundary; implementations must not
// rely on runtime reflection to reconstruct themselves.
type Entity interface {
	EntityID() int32
	TypeID() int32
	OwnerID() int32
	Serialize() []byte
	Deserialize(data []byte) error
	Hash() uint64
	SimulationStep(deltaMs int64)
	ApplyCommand(cmd command.Command)
	Reset()
}

// Factory constructs a fresh, zeroed entity of a given type for restoration
// from a snapshot that references an id the world does not currently hold.
type Factory func(entityID, ownerID, typeID int32) Entity

// FactoryRegistry maps typeId to the Factory that constructs it.
type FactoryRegistry struct {
	factories map[int32]Factory
}

// NewFactoryRegistry returns a registry holding only the built-in
// UnitEntity factory.
func NewFactoryRegistry() *FactoryRegistry {
	r := &FactoryRegistry{factories: make(map[int32]Factory)}
	r.Register(TypeUnit, NewUnitEntity)
	return r
}

// Register installs or replaces the factory for typeID.
func (r *FactoryRegistry) Register(typeID int32, factory Factory) {
	r.factories[typeID] = factory
}

// Create constructs a fresh entity of typeID, or ErrUnknownEntityType if no
// factory is registered.
func (r *FactoryRegistry) Create(entityID, ownerID, typeID int32) (Entity, error) {
	factory, ok := r.factories[typeID]
	if !ok {
		return nil, ErrUnknownEntityType
	}
	return factory(entityID, ownerID, typeID), nil
}
