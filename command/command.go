// Package command defines the typed player-input value exchanged between
// peers and the lockstep engine, its stable binary wire form, and the
// kind-keyed registry used to reconstruct a value from raw bytes.
package command

import "encoding/binary"

// Kind identifies a command's payload shape. Kind numbers are part of the
// wire contract: once shipped, a kind's number and payload layout must
// never change.
type Kind uint32

const (
	KindEmpty  Kind = 0
	KindMove   Kind = 1
	KindAction Kind = 2
)

// headerLen is the size of the fixed kind|playerId|tick header that
// precedes every payload on the wire.
const headerLen = 12

// Payload is a kind-specific command body. Implementations are value types
// so that Command equality is structural.
type Payload interface {
	Kind() Kind
	Equal(other Payload) bool
	encode(buf []byte) []byte
}

// Command is a single player's input for a single tick. Commands are
// immutable once accepted into an input buffer.
type Command struct {
	PlayerID int32
	Tick     int32
	Payload  Payload
}

// Kind returns the command's payload kind, treating a nil payload as Empty.
func (c Command) Kind() Kind {
	if c.Payload == nil {
		return KindEmpty
	}
	return c.Payload.Kind()
}

// Equal reports whether c and other are structurally identical.
func (c Command) Equal(other Command) bool {
	if c.PlayerID != other.PlayerID || c.Tick != other.Tick {
		return false
	}
	if c.Payload == nil || other.Payload == nil {
		return c.Payload == nil && other.Payload == nil
	}
	return c.Payload.Equal(other.Payload)
}

// Serialize produces the stable binary wire form: kind:u32 | playerId:i32 |
// tick:i32 | payload, all little-endian.
func (c Command) Serialize() []byte {
	payload := c.Payload
	if payload == nil {
		payload = EmptyPayload{}
	}
	buf := make([]byte, headerLen, headerLen+32)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(payload.Kind()))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(c.PlayerID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(c.Tick))
	return payload.encode(buf)
}

func decodeHeader(data []byte) (playerID, tick int32, err error) {
	if len(data) < headerLen {
		return 0, 0, ErrTruncated
	}
	playerID = int32(binary.LittleEndian.Uint32(data[4:8]))
	tick = int32(binary.LittleEndian.Uint32(data[8:12]))
	return playerID, tick, nil
}
