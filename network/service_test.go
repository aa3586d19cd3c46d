package network

import (
	"context"
	"testing"

	"lockstepd/command"
	"lockstepd/internal/transport"
	"lockstepd/logging"
	"lockstepd/proto"
)

type stubHandler struct {
	received []command.Command
	desyncs  int
}

func (h *stubHandler) OnCommandReceived(ctx context.Context, cmd command.Command) error {
	h.received = append(h.received, cmd)
	return nil
}

func (h *stubHandler) OnDesyncDetected(ctx context.Context, peerID int32, tick int32, localHash, remoteHash uint64) {
	h.desyncs++
}

func TestBroadcastCommandDeliversAcrossServices(t *testing.T) {
	bus := transport.NewBus()
	hostHandler := &stubHandler{}
	peerHandler := &stubHandler{}

	host := New(bus.Join("host"), command.NewRegistry(), hostHandler, nil, nil)
	peer := New(bus.Join("peer"), command.NewRegistry(), peerHandler, nil, nil)
	host.CreateRoom("room", 2)
	peer.JoinRoom(1, "peer")

	cmd := command.NewMove(1, 5, 1<<32, 0, 0)
	if err := peer.BroadcastCommand(cmd); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	host.Poll(context.Background())
	if len(hostHandler.received) != 1 {
		t.Fatalf("expected host to receive 1 command, got %d", len(hostHandler.received))
	}
	if !hostHandler.received[0].Equal(cmd) {
		t.Fatalf("expected round-tripped command to equal original")
	}
}

func TestSyncHashMismatchRaisesDesync(t *testing.T) {
	bus := transport.NewBus()
	hostHandler := &stubHandler{}
	peerHandler := &stubHandler{}

	host := New(bus.Join("host"), command.NewRegistry(), hostHandler, nil, nil)
	peer := New(bus.Join("peer"), command.NewRegistry(), peerHandler, nil, nil)
	host.CreateRoom("room", 2)
	peer.JoinRoom(1, "peer")
	host.Poll(context.Background()) // drain JoinRoom control message

	if err := host.BroadcastSyncHash(30, 111, 0); err != nil {
		t.Fatalf("host broadcast sync hash: %v", err)
	}
	if err := peer.BroadcastSyncHash(30, 222, 1); err != nil {
		t.Fatalf("peer broadcast sync hash: %v", err)
	}

	host.Poll(context.Background())
	peer.Poll(context.Background())

	if hostHandler.desyncs != 1 {
		t.Fatalf("expected host to detect desync once, got %d", hostHandler.desyncs)
	}
	if peerHandler.desyncs != 1 {
		t.Fatalf("expected peer to detect desync once, got %d", peerHandler.desyncs)
	}
}

func TestSyncHashAgreementDoesNotRaiseDesync(t *testing.T) {
	bus := transport.NewBus()
	hostHandler := &stubHandler{}
	peerHandler := &stubHandler{}

	host := New(bus.Join("host"), command.NewRegistry(), hostHandler, nil, nil)
	peer := New(bus.Join("peer"), command.NewRegistry(), peerHandler, nil, nil)
	host.CreateRoom("room", 2)
	peer.JoinRoom(1, "peer")
	host.Poll(context.Background())

	host.BroadcastSyncHash(30, 999, 0)
	peer.BroadcastSyncHash(30, 999, 1)
	host.Poll(context.Background())
	peer.Poll(context.Background())

	if hostHandler.desyncs != 0 || peerHandler.desyncs != 0 {
		t.Fatalf("expected no desync when hashes agree, got host=%d peer=%d", hostHandler.desyncs, peerHandler.desyncs)
	}
}

func TestClearOldDataPrunesSyncHashTable(t *testing.T) {
	bus := transport.NewBus()
	host := New(bus.Join("host"), command.NewRegistry(), &stubHandler{}, nil, nil)
	host.CreateRoom("room", 1)
	host.syncHashes[syncHashKey{Tick: 5, PlayerID: 0}] = 1
	host.syncHashes[syncHashKey{Tick: 50, PlayerID: 0}] = 2

	host.ClearOldData(30)

	if _, ok := host.syncHashes[syncHashKey{Tick: 5, PlayerID: 0}]; ok {
		t.Fatalf("expected tick 5 entry pruned")
	}
	if _, ok := host.syncHashes[syncHashKey{Tick: 50, PlayerID: 0}]; !ok {
		t.Fatalf("expected tick 50 entry retained")
	}
}

// TestGameStartFiresOnceRoomFullAndReady exercises §4.7's "On PlayerReady:
// update player; if host and all ready, send GameStart" end to end across
// two Services joined by an in-memory bus: the host only starts once both
// seats have reported ready, and the peer learns the agreed parameters
// purely from the GameStart message, never from a locally assumed seed.
func TestGameStartFiresOnceRoomFullAndReady(t *testing.T) {
	bus := transport.NewBus()
	host := New(bus.Join("host"), command.NewRegistry(), &stubHandler{}, nil, nil)
	peer := New(bus.Join("peer"), command.NewRegistry(), &stubHandler{}, nil, nil)

	var hostStarts, peerStarts int
	var gotSeed, gotInterval, gotDelay int32
	var gotIDs []int32

	host.CreateRoom("host", 2)
	host.SetGameParams(42, 50, 2)
	host.SetOnGameStart(func(seed, interval, delay int32, ids []int32) {
		hostStarts++
		gotSeed, gotInterval, gotDelay, gotIDs = seed, interval, delay, ids
	})
	peer.SetOnGameStart(func(seed, interval, delay int32, ids []int32) {
		peerStarts++
	})

	if err := peer.JoinRoom(1, "peer"); err != nil {
		t.Fatalf("join room: %v", err)
	}
	host.Poll(context.Background()) // drain JoinRoom

	if err := peer.SendReady(true); err != nil {
		t.Fatalf("peer send ready: %v", err)
	}
	host.Poll(context.Background())
	if hostStarts != 0 {
		t.Fatalf("expected no start with only one of two seats ready, got %d", hostStarts)
	}

	if err := host.SendReady(true); err != nil {
		t.Fatalf("host send ready: %v", err)
	}
	if hostStarts != 1 {
		t.Fatalf("expected host to start exactly once all seats ready, got %d", hostStarts)
	}
	if gotSeed != 42 || gotInterval != 50 || gotDelay != 2 {
		t.Fatalf("unexpected game params: seed=%d interval=%d delay=%d", gotSeed, gotInterval, gotDelay)
	}
	if len(gotIDs) != 2 || gotIDs[0] != 0 || gotIDs[1] != 1 {
		t.Fatalf("expected sorted playerIds [0 1], got %v", gotIDs)
	}

	peer.Poll(context.Background())
	if peerStarts != 1 {
		t.Fatalf("expected peer to receive GameStart exactly once, got %d", peerStarts)
	}
}

func TestSendReadyDoesNotStartBeforeRoomFull(t *testing.T) {
	bus := transport.NewBus()
	host := New(bus.Join("host"), command.NewRegistry(), &stubHandler{}, nil, nil)
	starts := 0
	host.CreateRoom("host", 2)
	host.SetOnGameStart(func(seed, interval, delay int32, ids []int32) { starts++ })

	if err := host.SendReady(true); err != nil {
		t.Fatalf("send ready: %v", err)
	}
	if starts != 0 {
		t.Fatalf("expected no start with an empty second seat, got %d", starts)
	}
}

// TestHandleCommandLogsRejectionOnDecodeFailure covers §7's "logged, the
// offending message is dropped" handling of an undecodable command: the
// handler must never be invoked, and the publisher must receive exactly one
// CommandRejected event.
func TestHandleCommandLogsRejectionOnDecodeFailure(t *testing.T) {
	var events []logging.Event
	pub := logging.PublisherFunc(func(ctx context.Context, e logging.Event) {
		events = append(events, e)
	})

	bus := transport.NewBus()
	handler := &stubHandler{}
	host := New(bus.Join("host"), command.NewRegistry(), handler, nil, pub)
	peer := New(bus.Join("peer"), command.NewRegistry(), &stubHandler{}, nil, nil)
	host.CreateRoom("room", 2)
	peer.JoinRoom(1, "peer")
	host.Poll(context.Background())

	bogus := proto.CommandMsg{Tick: 7, PlayerID: 1, CmdBytes: []byte{0xFF, 0xFF, 0xFF, 0xFF}}
	if err := peer.transport.Broadcast(bogus.Encode(), transport.Reliable); err != nil {
		t.Fatalf("broadcast bogus command: %v", err)
	}

	host.Poll(context.Background())

	if len(handler.received) != 0 {
		t.Fatalf("expected handler to receive no commands, got %d", len(handler.received))
	}
	if len(events) != 1 {
		t.Fatalf("expected exactly one published event, got %d", len(events))
	}
	if events[0].Tick != 7 {
		t.Fatalf("expected rejected event to carry tick 7, got %d", events[0].Tick)
	}
}
