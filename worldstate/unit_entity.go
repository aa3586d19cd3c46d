package worldstate

import (
	"encoding/binary"
	"hash/fnv"

	"lockstepd/command"
	"lockstepd/fixedpoint"
)

// TypeUnit is the wire typeId for UnitEntity, the minimal demonstration
// entity: a body with a position, rotation, scale, and an optional movement
// target it walks toward at a fixed speed.
const TypeUnit int32 = 1

// UnitEntity is the out-of-the-box "unit with position and movement target"
// demonstration entity named in the system's scope.
type UnitEntity struct {
	entityID int32
	ownerID  int32
	typeID   int32

	Position  fixedpoint.FP3
	Rotation  fixedpoint.FP
	Scale     fixedpoint.FP3
	MoveSpeed fixedpoint.FP
	Target    fixedpoint.FP3
	IsMoving  bool
}

// NewUnitEntity satisfies the Factory signature. The default scale is
// (1, 1, 1) and the default speed is zero; callers configure those after
// construction.
func NewUnitEntity(entityID, ownerID, typeID int32) Entity {
	return &UnitEntity{
		entityID: entityID,
		ownerID:  ownerID,
		typeID:   typeID,
		Scale:    fixedpoint.FP3{X: fixedpoint.FromInt(1), Y: fixedpoint.FromInt(1), Z: fixedpoint.FromInt(1)},
	}
}

func (u *UnitEntity) EntityID() int32 { return u.entityID }
func (u *UnitEntity) TypeID() int32   { return u.typeID }
func (u *UnitEntity) OwnerID() int32  { return u.ownerID }

// Reset clears motion state but keeps identity and scale.
func (u *UnitEntity) Reset() {
	u.Position = fixedpoint.FP3{}
	u.Rotation = fixedpoint.Zero
	u.Target = fixedpoint.FP3{}
	u.IsMoving = false
}

// ApplyCommand handles a Move command by setting a new walk target.
func (u *UnitEntity) ApplyCommand(cmd command.Command) {
	move, ok := cmd.Payload.(command.MovePayload)
	if !ok {
		return
	}
	u.Target = fixedpoint.FP3{
		X: fixedpoint.FromRaw(move.X),
		Y: fixedpoint.FromRaw(move.Y),
		Z: fixedpoint.FromRaw(move.Z),
	}
	u.IsMoving = true
}

// SimulationStep advances Position toward Target by MoveSpeed * deltaMs,
// clearing IsMoving once the target is reached.
func (u *UnitEntity) SimulationStep(deltaMs int64) {
	if !u.IsMoving {
		return
	}
	deltaSeconds, err := fixedpoint.FromInt(deltaMs).Div(fixedpoint.FromInt(1000))
	if err != nil {
		return
	}
	maxDelta := u.MoveSpeed.Mul(deltaSeconds)
	next, err := fixedpoint.MoveTowards3(u.Position, u.Target, maxDelta)
	if err != nil {
		return
	}
	u.Position = next
	if u.Position.Equal(u.Target) {
		u.IsMoving = false
	}
}

// serializedLen is the fixed byte length of UnitEntity's payload: the
// owner id, three FP3 fields, two FP fields, and one bool byte.
const serializedLen = 4 + 3*24 + 2*8 + 1

// Serialize encodes OwnerID, Position, Rotation, Scale, MoveSpeed, Target,
// and IsMoving as fixed-width little-endian fields. OwnerID round-trips
// through the payload itself, not the snapshot header, since restoring an
// entity that already exists locally never re-reads the header's typeId.
func (u *UnitEntity) Serialize() []byte {
	buf := make([]byte, serializedLen)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(u.ownerID))
	off := 4
	off = putFP3(buf, off, u.Position)
	off = putFP(buf, off, u.Rotation)
	off = putFP3(buf, off, u.Scale)
	off = putFP(buf, off, u.MoveSpeed)
	off = putFP3(buf, off, u.Target)
	if u.IsMoving {
		buf[off] = 1
	}
	return buf
}

// Deserialize decodes a byte slice produced by Serialize, in place.
func (u *UnitEntity) Deserialize(data []byte) error {
	if len(data) < serializedLen {
		return ErrTruncatedSnapshot
	}
	u.ownerID = int32(binary.LittleEndian.Uint32(data[0:4]))
	off := 4
	u.Position, off = getFP3(data, off)
	u.Rotation, off = getFP(data, off)
	u.Scale, off = getFP3(data, off)
	u.MoveSpeed, off = getFP(data, off)
	u.Target, off = getFP3(data, off)
	u.IsMoving = data[off] != 0
	return nil
}

// Hash is the canonical byte-at-a-time FNV-1a digest of Serialize's output.
func (u *UnitEntity) Hash() uint64 {
	h := fnv.New64a()
	h.Write(u.Serialize())
	return h.Sum64()
}

func putFP(buf []byte, off int, v fixedpoint.FP) int {
	binary.LittleEndian.PutUint64(buf[off:off+8], uint64(v.Raw))
	return off + 8
}

func getFP(buf []byte, off int) (fixedpoint.FP, int) {
	return fixedpoint.FromRaw(int64(binary.LittleEndian.Uint64(buf[off : off+8]))), off + 8
}

func putFP3(buf []byte, off int, v fixedpoint.FP3) int {
	off = putFP(buf, off, v.X)
	off = putFP(buf, off, v.Y)
	off = putFP(buf, off, v.Z)
	return off
}

func getFP3(buf []byte, off int) (fixedpoint.FP3, int) {
	var v fixedpoint.FP3
	v.X, off = getFP(buf, off)
	v.Y, off = getFP(buf, off)
	v.Z, off = getFP(buf, off)
	return v, off
}
