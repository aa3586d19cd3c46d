package command

import "encoding/binary"

// EmptyPayload is the no-op command emitted by the predictor when no real
// input is available for a (tick, player) slot.
type EmptyPayload struct{}

func (EmptyPayload) Kind() Kind { return KindEmpty }

func (EmptyPayload) Equal(other Payload) bool {
	_, ok := other.(EmptyPayload)
	return ok
}

func (EmptyPayload) encode(buf []byte) []byte { return buf }

func decodeEmpty(data []byte) (Command, error) {
	playerID, tick, err := decodeHeader(data)
	if err != nil {
		return Command{}, err
	}
	return Command{PlayerID: playerID, Tick: tick, Payload: EmptyPayload{}}, nil
}

// NewEmpty constructs an Empty command for playerID at tick.
func NewEmpty(playerID, tick int32) Command {
	return Command{PlayerID: playerID, Tick: tick, Payload: EmptyPayload{}}
}

// MovePayload carries a movement target as raw 32.32 fixed-point
// components.
type MovePayload struct {
	X, Y, Z int64
}

func (MovePayload) Kind() Kind { return KindMove }

func (p MovePayload) Equal(other Payload) bool {
	o, ok := other.(MovePayload)
	return ok && o == p
}

func (p MovePayload) encode(buf []byte) []byte {
	tail := make([]byte, 24)
	binary.LittleEndian.PutUint64(tail[0:8], uint64(p.X))
	binary.LittleEndian.PutUint64(tail[8:16], uint64(p.Y))
	binary.LittleEndian.PutUint64(tail[16:24], uint64(p.Z))
	return append(buf, tail...)
}

func decodeMove(data []byte) (Command, error) {
	playerID, tick, err := decodeHeader(data)
	if err != nil {
		return Command{}, err
	}
	if len(data) < headerLen+24 {
		return Command{}, ErrTruncated
	}
	body := data[headerLen:]
	payload := MovePayload{
		X: int64(binary.LittleEndian.Uint64(body[0:8])),
		Y: int64(binary.LittleEndian.Uint64(body[8:16])),
		Z: int64(binary.LittleEndian.Uint64(body[16:24])),
	}
	return Command{PlayerID: playerID, Tick: tick, Payload: payload}, nil
}

// NewMove constructs a Move command from raw fixed-point components.
func NewMove(playerID, tick int32, x, y, z int64) Command {
	return Command{PlayerID: playerID, Tick: tick, Payload: MovePayload{X: x, Y: y, Z: z}}
}

// ActionPayload identifies an ability or interaction trigger, optionally
// aimed at a target entity or a world-space point.
type ActionPayload struct {
	ActionID     int32
	TargetEntity int32
	X, Y, Z      int64
}

func (ActionPayload) Kind() Kind { return KindAction }

func (p ActionPayload) Equal(other Payload) bool {
	o, ok := other.(ActionPayload)
	return ok && o == p
}

func (p ActionPayload) encode(buf []byte) []byte {
	tail := make([]byte, 32)
	binary.LittleEndian.PutUint32(tail[0:4], uint32(p.ActionID))
	binary.LittleEndian.PutUint32(tail[4:8], uint32(p.TargetEntity))
	binary.LittleEndian.PutUint64(tail[8:16], uint64(p.X))
	binary.LittleEndian.PutUint64(tail[16:24], uint64(p.Y))
	binary.LittleEndian.PutUint64(tail[24:32], uint64(p.Z))
	return append(buf, tail...)
}

func decodeAction(data []byte) (Command, error) {
	playerID, tick, err := decodeHeader(data)
	if err != nil {
		return Command{}, err
	}
	if len(data) < headerLen+32 {
		return Command{}, ErrTruncated
	}
	body := data[headerLen:]
	payload := ActionPayload{
		ActionID:     int32(binary.LittleEndian.Uint32(body[0:4])),
		TargetEntity: int32(binary.LittleEndian.Uint32(body[4:8])),
		X:            int64(binary.LittleEndian.Uint64(body[8:16])),
		Y:            int64(binary.LittleEndian.Uint64(body[16:24])),
		Z:            int64(binary.LittleEndian.Uint64(body[24:32])),
	}
	return Command{PlayerID: playerID, Tick: tick, Payload: payload}, nil
}

// NewAction constructs an Action command.
func NewAction(playerID, tick, actionID, targetEntity int32, x, y, z int64) Command {
	return Command{
		PlayerID: playerID,
		Tick:     tick,
		Payload: ActionPayload{
			ActionID:     actionID,
			TargetEntity: targetEntity,
			X:            x,
			Y:            y,
			Z:            z,
		},
	}
}
