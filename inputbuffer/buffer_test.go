package inputbuffer

import (
	"testing"

	"lockstepd/command"
)

func TestAddGetAndHasAll(t *testing.T) {
	buf := New()
	buf.Add(command.NewEmpty(0, 10))
	buf.Add(command.NewEmpty(1, 10))

	if !buf.HasSlot(10, 0) || !buf.HasSlot(10, 1) {
		t.Fatalf("expected both slots present")
	}
	if !buf.HasAll(10, 2) {
		t.Fatalf("expected HasAll(10,2) to be true")
	}
	if buf.HasAll(10, 3) {
		t.Fatalf("expected HasAll(10,3) to be false")
	}
}

func TestAsListOrdersByPlayerID(t *testing.T) {
	buf := New()
	buf.Add(command.NewEmpty(2, 5))
	buf.Add(command.NewEmpty(0, 5))
	buf.Add(command.NewEmpty(1, 5))

	list := buf.AsList(5)
	if len(list) != 3 {
		t.Fatalf("expected 3 commands, got %d", len(list))
	}
	for i, cmd := range list {
		if cmd.PlayerID != int32(i) {
			t.Fatalf("expected ascending player order, got %+v at index %d", cmd, i)
		}
	}
}

func TestOverwriteSameSlot(t *testing.T) {
	buf := New()
	buf.Add(command.NewMove(0, 1, 1, 0, 0))
	buf.Add(command.NewMove(0, 1, 2, 0, 0))

	cmd, ok := buf.Get(1, 0)
	if !ok {
		t.Fatalf("expected slot present")
	}
	move, ok := cmd.Payload.(command.MovePayload)
	if !ok || move.X != 2 {
		t.Fatalf("expected overwritten move with X=2, got %+v", cmd)
	}
}

func TestBoundsTrackedAcrossClear(t *testing.T) {
	buf := New()
	if _, err := buf.OldestTick(); err != ErrEmpty {
		t.Fatalf("expected ErrEmpty on fresh buffer")
	}
	buf.Add(command.NewEmpty(0, 3))
	buf.Add(command.NewEmpty(0, 7))
	buf.Add(command.NewEmpty(0, 1))

	oldest, err := buf.OldestTick()
	if err != nil || oldest != 1 {
		t.Fatalf("expected oldest=1, got %d (%v)", oldest, err)
	}
	newest, err := buf.NewestTick()
	if err != nil || newest != 7 {
		t.Fatalf("expected newest=7, got %d (%v)", newest, err)
	}

	buf.ClearBefore(3)
	oldest, _ = buf.OldestTick()
	if oldest != 3 {
		t.Fatalf("expected oldest=3 after ClearBefore(3), got %d", oldest)
	}

	buf.ClearAfter(3)
	newest, _ = buf.NewestTick()
	if newest != 3 {
		t.Fatalf("expected newest=3 after ClearAfter(3), got %d", newest)
	}

	buf.Clear()
	if _, err := buf.OldestTick(); err != ErrEmpty {
		t.Fatalf("expected ErrEmpty after Clear")
	}
}

func TestPredictorLastValueFallback(t *testing.T) {
	p := NewPredictor()
	predicted := p.Predict(0, 5)
	if predicted.Kind() != command.KindEmpty {
		t.Fatalf("expected Empty prediction with no history, got %+v", predicted)
	}

	move := command.NewMove(0, 4, 1, 2, 3)
	p.Observe(move)
	predicted = p.Predict(0, 5)
	if predicted.Kind() != command.KindMove || predicted.Tick != 5 {
		t.Fatalf("expected predicted move rewritten to tick 5, got %+v", predicted)
	}
}

func TestPredictorAccuracy(t *testing.T) {
	p := NewPredictor()
	predicted := command.NewEmpty(0, 1)
	real := command.NewMove(0, 1, 1, 1, 1)
	p.Resolve(predicted, real)
	if got := p.Accuracy(); got != 0 {
		t.Fatalf("expected 0 accuracy after a miss, got %v", got)
	}
	p.Resolve(real, real)
	if got := p.Accuracy(); got != 0.5 {
		t.Fatalf("expected 0.5 accuracy after one hit one miss, got %v", got)
	}
}
