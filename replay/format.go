// Package replay implements the deterministic recording and playback
// subsystem: a Recorder that captures the exact command stream a session
// produced, a Player that drives simulation.Tick from a loaded recording
// at adjustable speed with seek support, and the binary file container
// both read and write.
package replay

import (
	"encoding/binary"

	"lockstepd/command"
)

// Magic identifies a replay file. The value spells ASCII "RPLY" read
// most-significant byte first; Encode writes it little-endian, so a file's
// first four bytes are "YLPR".
const Magic uint32 = 0x52504C59

// CurrentVersion is the highest metadata version this package writes and
// reads. A file whose version exceeds this is ErrUnsupportedReplay.
const CurrentVersion int32 = 1

// Metadata is the fixed-shape header recorded once per file.
type Metadata struct {
	Version         int32
	SessionID       string
	RecordedAt      int64
	DurationMs      int64
	TotalTicks      int32
	PlayerCount     int32
	TickIntervalMs  int32
	RandomSeed      int32
}

// TickEntry is one tick's worth of recorded commands.
type TickEntry struct {
	Tick     int32
	Commands []command.Command
}

// Data is a fully loaded (or about-to-be-saved) replay: metadata plus the
// ordered tick log.
type Data struct {
	Metadata Metadata
	Ticks    []TickEntry
}

// Encode serializes data to the wire container format: magic, metadata,
// tick count, then each tick's (tick, cmdCount, [len, cmdBytes]...).
func Encode(data Data) []byte {
	buf := make([]byte, 0, 64+len(data.Ticks)*16)
	buf = appendUint32(buf, Magic)
	buf = appendInt32(buf, data.Metadata.Version)
	buf = appendString(buf, data.Metadata.SessionID)
	buf = appendInt64(buf, data.Metadata.RecordedAt)
	buf = appendInt64(buf, data.Metadata.DurationMs)
	buf = appendInt32(buf, data.Metadata.TotalTicks)
	buf = appendInt32(buf, data.Metadata.PlayerCount)
	buf = appendInt32(buf, data.Metadata.TickIntervalMs)
	buf = appendInt32(buf, data.Metadata.RandomSeed)
	buf = appendInt32(buf, int32(len(data.Ticks)))
	for _, entry := range data.Ticks {
		buf = appendInt32(buf, entry.Tick)
		buf = appendInt32(buf, int32(len(entry.Commands)))
		for _, cmd := range entry.Commands {
			serialized := cmd.Serialize()
			buf = appendInt32(buf, int32(len(serialized)))
			buf = append(buf, serialized...)
		}
	}
	return buf
}

// Decode parses the wire container format, decoding each command through
// registry. It returns ErrUnsupportedReplay for an unrecognized magic or a
// version newer than CurrentVersion, and ErrInvalidReplayFormat for any
// other structural inconsistency.
func Decode(raw []byte, registry *command.Registry) (Data, error) {
	r := &reader{buf: raw}

	magic, ok := r.readUint32()
	if !ok || magic != Magic {
		return Data{}, ErrUnsupportedReplay
	}

	version, ok := r.readInt32()
	if !ok {
		return Data{}, ErrInvalidReplayFormat
	}
	if version > CurrentVersion {
		return Data{}, ErrUnsupportedReplay
	}

	sessionID, ok := r.readString()
	if !ok {
		return Data{}, ErrInvalidReplayFormat
	}
	recordedAt, ok1 := r.readInt64()
	durationMs, ok2 := r.readInt64()
	totalTicks, ok3 := r.readInt32()
	playerCount, ok4 := r.readInt32()
	tickIntervalMs, ok5 := r.readInt32()
	randomSeed, ok6 := r.readInt32()
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return Data{}, ErrInvalidReplayFormat
	}

	tickCount, ok := r.readInt32()
	if !ok || tickCount < 0 {
		return Data{}, ErrInvalidReplayFormat
	}

	ticks := make([]TickEntry, 0, tickCount)
	for i := int32(0); i < tickCount; i++ {
		tick, ok := r.readInt32()
		if !ok {
			return Data{}, ErrInvalidReplayFormat
		}
		cmdCount, ok := r.readInt32()
		if !ok || cmdCount < 0 {
			return Data{}, ErrInvalidReplayFormat
		}
		commands := make([]command.Command, 0, cmdCount)
		for j := int32(0); j < cmdCount; j++ {
			length, ok := r.readInt32()
			if !ok || length < 0 {
				return Data{}, ErrInvalidReplayFormat
			}
			raw, ok := r.readBytes(int(length))
			if !ok {
				return Data{}, ErrInvalidReplayFormat
			}
			cmd, err := registry.Deserialize(raw)
			if err != nil {
				return Data{}, ErrInvalidReplayFormat
			}
			commands = append(commands, cmd)
		}
		ticks = append(ticks, TickEntry{Tick: tick, Commands: commands})
	}

	return Data{
		Metadata: Metadata{
			Version:        version,
			SessionID:      sessionID,
			RecordedAt:     recordedAt,
			DurationMs:     durationMs,
			TotalTicks:     totalTicks,
			PlayerCount:    playerCount,
			TickIntervalMs: tickIntervalMs,
			RandomSeed:     randomSeed,
		},
		Ticks: ticks,
	}, nil
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) readUint32() (uint32, bool) {
	if r.pos+4 > len(r.buf) {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, true
}

func (r *reader) readInt32() (int32, bool) {
	v, ok := r.readUint32()
	return int32(v), ok
}

func (r *reader) readInt64() (int64, bool) {
	if r.pos+8 > len(r.buf) {
		return 0, false
	}
	v := binary.LittleEndian.Uint64(r.buf[r.pos : r.pos+8])
	r.pos += 8
	return int64(v), true
}

func (r *reader) readBytes(n int) ([]byte, bool) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, false
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, true
}

func (r *reader) readString() (string, bool) {
	length, ok := r.readInt32()
	if !ok || length < 0 {
		return "", false
	}
	raw, ok := r.readBytes(int(length))
	if !ok {
		return "", false
	}
	return string(raw), true
}

func appendUint32(buf []byte, v uint32) []byte {
	tail := make([]byte, 4)
	binary.LittleEndian.PutUint32(tail, v)
	return append(buf, tail...)
}

func appendInt32(buf []byte, v int32) []byte {
	return appendUint32(buf, uint32(v))
}

func appendInt64(buf []byte, v int64) []byte {
	tail := make([]byte, 8)
	binary.LittleEndian.PutUint64(tail, uint64(v))
	return append(buf, tail...)
}

func appendString(buf []byte, s string) []byte {
	buf = appendInt32(buf, int32(len(s)))
	return append(buf, s...)
}
