package simulation

import (
	"testing"

	"lockstepd/command"
	"lockstepd/worldstate"
)

func spawnUnit(t *testing.T, sim *Simulation, owner int32, speed int64) *worldstate.UnitEntity {
	t.Helper()
	entity, err := sim.World().Spawn(owner, worldstate.TypeUnit)
	if err != nil {
		t.Fatalf("spawn: %v", err)
	}
	unit := entity.(*worldstate.UnitEntity)
	unit.MoveSpeed.Raw = speed
	return unit
}

func TestDeterminismOverSeedAndCommands(t *testing.T) {
	run := func() uint64 {
		sim := New(worldstate.NewFactoryRegistry(), 10, 50)
		sim.Initialize(12345)
		spawnUnit(t, sim, 0, 5<<32)
		cmds := []command.Command{command.NewMove(0, 0, 10<<32, 0, 10<<32)}
		for i := 0; i < 100; i++ {
			if i == 0 {
				sim.Tick(cmds)
			} else {
				sim.Tick(nil)
			}
		}
		return sim.StateHash()
	}
	if run() != run() {
		t.Fatalf("expected identical hash across identical runs")
	}
}

func TestRollbackIdempotence(t *testing.T) {
	sim := New(worldstate.NewFactoryRegistry(), 20, 50)
	sim.Initialize(1)
	spawnUnit(t, sim, 0, 5<<32)

	cmds := []command.Command{command.NewMove(0, 0, 10 << 32, 0, 0)}
	for i := 0; i < 5; i++ {
		sim.CreateSnapshot()
		if i == 0 {
			sim.Tick(cmds)
		} else {
			sim.Tick(nil)
		}
	}
	control := sim.StateHash()

	restoredTick, err := sim.Rollback(2)
	if err != nil {
		t.Fatalf("rollback: %v", err)
	}
	for int32(sim.World().Tick()) < 5 {
		sim.Tick(nil)
	}
	if sim.StateHash() != control {
		t.Fatalf("expected rollback+resimulate hash to match control run, restoredTick=%d", restoredTick)
	}
}

func TestRollbackImpossibleWithNoSnapshot(t *testing.T) {
	sim := New(worldstate.NewFactoryRegistry(), 5, 50)
	sim.Initialize(1)
	if _, err := sim.Rollback(3); err != ErrRollbackImpossible {
		t.Fatalf("expected ErrRollbackImpossible, got %v", err)
	}
}
