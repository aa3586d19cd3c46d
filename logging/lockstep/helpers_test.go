package lockstep

import (
	"context"
	"testing"

	"lockstepd/logging"
)

func TestNilPublisherIsANoop(t *testing.T) {
	// None of these must panic when pub is nil; callers pass nil by default
	// rather than constructing a NopPublisher.
	TickExecuted(context.Background(), nil, 1, TickExecutedPayload{})
	DesyncDetected(context.Background(), nil, 1, DesyncPayload{})
	Rollback(context.Background(), nil, 1, RollbackPayload{})
	CommandRejected(context.Background(), nil, 1, CommandRejectedPayload{})
	ReplayLifecycle(context.Background(), nil, 1, ReplayLifecyclePayload{})
}

func TestDesyncDetectedTagsPeerAsActor(t *testing.T) {
	var got logging.Event
	pub := logging.PublisherFunc(func(ctx context.Context, e logging.Event) { got = e })

	DesyncDetected(context.Background(), pub, 10, DesyncPayload{LocalHash: 1, RemoteHash: 2, PeerID: 3})

	if got.Actor.Kind != logging.EntityKindPlayer || got.Actor.ID != "3" {
		t.Fatalf("expected actor player:3, got %+v", got.Actor)
	}
	if got.Severity != logging.SeverityError {
		t.Fatalf("expected error severity, got %v", got.Severity)
	}
}

func TestCommandRejectedTagsSenderAsActor(t *testing.T) {
	var got logging.Event
	pub := logging.PublisherFunc(func(ctx context.Context, e logging.Event) { got = e })

	CommandRejected(context.Background(), pub, 5, CommandRejectedPayload{PlayerID: 7, Reason: "unknown kind"})

	if got.Actor.Kind != logging.EntityKindPlayer || got.Actor.ID != "7" {
		t.Fatalf("expected actor player:7, got %+v", got.Actor)
	}
	if got.Severity != logging.SeverityWarn {
		t.Fatalf("expected warn severity, got %v", got.Severity)
	}
}

func TestRollbackSeverityReflectsOutcome(t *testing.T) {
	var events []logging.Event
	pub := logging.PublisherFunc(func(ctx context.Context, e logging.Event) { events = append(events, e) })

	Rollback(context.Background(), pub, 1, RollbackPayload{TargetTick: 4, Succeeded: true})
	Rollback(context.Background(), pub, 2, RollbackPayload{TargetTick: 4, Succeeded: false, Reason: "snapshot missing"})

	if events[0].Severity != logging.SeverityInfo {
		t.Fatalf("expected successful rollback to log at info, got %v", events[0].Severity)
	}
	if events[1].Severity != logging.SeverityWarn {
		t.Fatalf("expected failed rollback to log at warn, got %v", events[1].Severity)
	}
	if events[0].Actor.Kind != logging.EntityKindEngine {
		t.Fatalf("expected engine actor, got %+v", events[0].Actor)
	}
}
