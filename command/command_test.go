package command

import (
	"errors"
	"testing"
)

func TestRoundTripBuiltinKinds(t *testing.T) {
	reg := NewRegistry()
	cases := []Command{
		NewEmpty(7, 100),
		NewMove(1, 2, 42949672960, 0, 42949672960),
		NewAction(3, 4, 9, 12, -1, 2, 3),
	}
	for _, cmd := range cases {
		data := cmd.Serialize()
		got, err := reg.Deserialize(data)
		if err != nil {
			t.Fatalf("deserialize: %v", err)
		}
		if !got.Equal(cmd) {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, cmd)
		}
		if !bytesEqual(got.Serialize(), data) {
			t.Fatalf("re-serialize mismatch for %+v", cmd)
		}
	}
}

func TestDeserializeUnknownKind(t *testing.T) {
	reg := NewRegistry()
	data := make([]byte, headerLen)
	data[0] = 0xFF
	if _, err := reg.Deserialize(data); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestDeserializeTruncated(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Deserialize([]byte{1, 0, 0}); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	move := NewMove(0, 0, 1, 2, 3).Serialize()
	if _, err := reg.Deserialize(move[:headerLen+8]); !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated for short move payload, got %v", err)
	}
}

func TestCommandEqualityIsStructural(t *testing.T) {
	a := NewMove(1, 2, 3, 4, 5)
	b := NewMove(1, 2, 3, 4, 5)
	c := NewMove(1, 2, 3, 4, 6)
	if !a.Equal(b) {
		t.Fatalf("expected structurally identical commands to be equal")
	}
	if a.Equal(c) {
		t.Fatalf("expected commands with differing payloads to differ")
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
