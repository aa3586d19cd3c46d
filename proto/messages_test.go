package proto

import "testing"

func TestRoundTripAllTags(t *testing.T) {
	cases := []Message{
		JoinRoom{},
		LeaveRoom{},
		PlayerReady{PlayerID: 2, Ready: true},
		GameStart{Seed: 7, TickIntervalMs: 50, InputDelayTicks: 2, PlayerIDs: []int32{0, 1, 2}},
		CommandMsg{Tick: 10, PlayerID: 1, CmdBytes: []byte{1, 2, 3, 4}},
		CommandAck{Tick: 10, PlayerID: 1},
		SyncHash{Tick: 30, Hash: -9223372036854775000, PlayerID: 0},
		Ping{Ts: 123456789, Seq: 5},
		Pong{Ts: 123456789, Seq: 5},
	}

	for _, msg := range cases {
		encoded := encode(t, msg)
		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("decode %T: %v", msg, err)
		}
		if decoded.Tag() != msg.Tag() {
			t.Fatalf("tag mismatch for %T: got %v want %v", msg, decoded.Tag(), msg.Tag())
		}
	}
}

func encode(t *testing.T, msg Message) []byte {
	t.Helper()
	switch m := msg.(type) {
	case JoinRoom:
		return m.Encode()
	case LeaveRoom:
		return m.Encode()
	case PlayerReady:
		return m.Encode()
	case GameStart:
		return m.Encode()
	case CommandMsg:
		return m.Encode()
	case CommandAck:
		return m.Encode()
	case SyncHash:
		return m.Encode()
	case Ping:
		return m.Encode()
	case Pong:
		return m.Encode()
	default:
		t.Fatalf("unhandled message type %T", msg)
		return nil
	}
}

func TestDecodeUnknownTag(t *testing.T) {
	if _, err := Decode([]byte{99}); err != ErrUnknownTag {
		t.Fatalf("expected ErrUnknownTag, got %v", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	if _, err := Decode([]byte{byte(TagPlayerReady), 1, 2}); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestGameStartRoundTripPreservesPlayerOrder(t *testing.T) {
	msg := GameStart{Seed: 1, TickIntervalMs: 50, InputDelayTicks: 2, PlayerIDs: []int32{5, 3, 9}}
	decoded, err := Decode(msg.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := decoded.(GameStart)
	for i, id := range msg.PlayerIDs {
		if got.PlayerIDs[i] != id {
			t.Fatalf("playerIds[%d] = %d, want %d", i, got.PlayerIDs[i], id)
		}
	}
}
