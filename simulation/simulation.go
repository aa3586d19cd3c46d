// Package simulation applies commands to the world each tick and owns the
// rollback/resimulate primitive the lockstep engine drives.
package simulation

import (
	"lockstepd/command"
	"lockstepd/fixedpoint"
	"lockstepd/worldstate"
)

// SystemPass is a registered extension point run once per tick after every
// entity has advanced (e.g. collision, AI). The built-in simulation ships
// with none registered.
type SystemPass func(world *worldstate.World, tickIntervalMs int64)

// Simulation owns the world, its snapshot ring, and the deterministic PRNG
// seeded at Initialize. Determinism invariant: identical seed plus
// identical command sequence yields identical snapshot bytes and hash at
// every tick.
type Simulation struct {
	world          *worldstate.World
	ring           *worldstate.SnapshotRing
	rand           *fixedpoint.Rand
	tickIntervalMs int64
	systems        []SystemPass
}

// New constructs a Simulation over a fresh world using factories, backed by
// a snapshot ring of the given capacity.
func New(factories *worldstate.FactoryRegistry, maxSnapshots int, tickIntervalMs int64) *Simulation {
	return &Simulation{
		world:          worldstate.NewWorld(factories),
		ring:           worldstate.NewSnapshotRing(maxSnapshots),
		rand:           fixedpoint.NewRand(0),
		tickIntervalMs: tickIntervalMs,
	}
}

// Initialize clears the world and snapshot ring and reseeds the PRNG.
func (s *Simulation) Initialize(seed uint32) {
	s.world.Clear()
	s.ring.ClearAll()
	s.rand = fixedpoint.NewRand(seed)
}

// RegisterSystem appends a system pass run after entity stepping each tick.
func (s *Simulation) RegisterSystem(pass SystemPass) {
	s.systems = append(s.systems, pass)
}

// World exposes the underlying world for spawn/inspect access outside the
// tick boundary (e.g. host setup before the engine starts).
func (s *Simulation) World() *worldstate.World { return s.world }

// Rand exposes the deterministic PRNG for system passes and host setup.
func (s *Simulation) Rand() *fixedpoint.Rand { return s.rand }

// Tick applies commands (already ordered by the caller per determinism
// requirements), advances every entity, runs system passes, then
// increments the world's tick.
func (s *Simulation) Tick(commands []command.Command) {
	for _, cmd := range commands {
		for _, entity := range s.world.Entities() {
			if entity.OwnerID() == cmd.PlayerID {
				entity.ApplyCommand(cmd)
			}
		}
	}
	for _, entity := range s.world.Entities() {
		entity.SimulationStep(s.tickIntervalMs)
	}
	for _, pass := range s.systems {
		pass(s.world, s.tickIntervalMs)
	}
	s.world.AdvanceTick()
}

// CreateSnapshot serializes the current world and saves it into the ring.
func (s *Simulation) CreateSnapshot() worldstate.Snapshot {
	snap := worldstate.CreateSnapshot(s.world)
	s.ring.Save(snap)
	return snap
}

// StateHash returns the world's current content hash.
func (s *Simulation) StateHash() uint64 {
	return s.world.Hash()
}

// Rollback locates the nearest snapshot at or before targetTick, restores
// it, and clears every snapshot after targetTick. It returns the tick the
// world was actually restored to (the snapshot's own tick, which may be
// earlier than targetTick). ErrRollbackImpossible is returned when no
// qualifying snapshot exists.
func (s *Simulation) Rollback(targetTick int32) (int32, error) {
	snap, ok := s.ring.NearestAtOrBefore(targetTick)
	if !ok {
		return 0, ErrRollbackImpossible
	}
	if err := worldstate.RestoreFromSnapshot(s.world, snap); err != nil {
		return 0, err
	}
	s.ring.ClearAfter(targetTick)
	return snap.Tick, nil
}
