// Package inputbuffer stores per-(tick, player) commands with a retention
// window and predicts missing slots from recent history.
package inputbuffer

import (
	"sort"
	"sync"

	"lockstepd/command"
)

// Buffer is a map tick -> (playerId -> Command) with incrementally tracked
// oldest/newest tick bounds. It is safe for concurrent use: inserts race
// with the network service while reads happen from the engine's tick loop.
type Buffer struct {
	mu    sync.Mutex
	ticks map[int32]map[int32]command.Command
	oldest int32
	newest int32
	hasBounds bool
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{ticks: make(map[int32]map[int32]command.Command)}
}

// Add stores cmd at (cmd.Tick, cmd.PlayerID). A re-write of the same slot
// overwrites the prior value (authoritative-latest wins).
func (b *Buffer) Add(cmd command.Command) {
	b.mu.Lock()
	defer b.mu.Unlock()
	slot, ok := b.ticks[cmd.Tick]
	if !ok {
		slot = make(map[int32]command.Command)
		b.ticks[cmd.Tick] = slot
	}
	slot[cmd.PlayerID] = cmd
	b.touchBoundsLocked(cmd.Tick)
}

func (b *Buffer) touchBoundsLocked(tick int32) {
	if !b.hasBounds {
		b.oldest = tick
		b.newest = tick
		b.hasBounds = true
		return
	}
	if tick < b.oldest {
		b.oldest = tick
	}
	if tick > b.newest {
		b.newest = tick
	}
}

// Get returns the command for (tick, playerID), if present.
func (b *Buffer) Get(tick, playerID int32) (command.Command, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	slot, ok := b.ticks[tick]
	if !ok {
		return command.Command{}, false
	}
	cmd, ok := slot[playerID]
	return cmd, ok
}

// GetAll returns every command stored at tick, in no particular order.
func (b *Buffer) GetAll(tick int32) []command.Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	slot, ok := b.ticks[tick]
	if !ok || len(slot) == 0 {
		return nil
	}
	out := make([]command.Command, 0, len(slot))
	for _, cmd := range slot {
		out = append(out, cmd)
	}
	return out
}

// AsList returns the commands stored at tick ordered by ascending
// PlayerID. This ordering is a simulation-determinism requirement: the
// engine must apply commands within a tick in the same order on every peer.
func (b *Buffer) AsList(tick int32) []command.Command {
	out := b.GetAll(tick)
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// HasSlot reports whether a command exists for (tick, playerID).
func (b *Buffer) HasSlot(tick, playerID int32) bool {
	_, ok := b.Get(tick, playerID)
	return ok
}

// HasAll reports whether exactly the playerCount distinct player ids
// 0..playerCount-1 are present at tick.
func (b *Buffer) HasAll(tick int32, playerCount int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	slot, ok := b.ticks[tick]
	if !ok || len(slot) != playerCount {
		return false
	}
	for i := int32(0); i < int32(playerCount); i++ {
		if _, ok := slot[i]; !ok {
			return false
		}
	}
	return true
}

// OldestTick returns the lowest tick with any stored command.
func (b *Buffer) OldestTick() (int32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasBounds {
		return 0, ErrEmpty
	}
	return b.oldest, nil
}

// NewestTick returns the highest tick with any stored command.
func (b *Buffer) NewestTick() (int32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasBounds {
		return 0, ErrEmpty
	}
	return b.newest, nil
}

// ClearBefore removes every tick strictly less than tick.
func (b *Buffer) ClearBefore(tick int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for t := range b.ticks {
		if t < tick {
			delete(b.ticks, t)
		}
	}
	b.recomputeBoundsLocked()
}

// ClearAfter removes every tick strictly greater than tick.
func (b *Buffer) ClearAfter(tick int32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for t := range b.ticks {
		if t > tick {
			delete(b.ticks, t)
		}
	}
	b.recomputeBoundsLocked()
}

// Clear empties the buffer entirely.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ticks = make(map[int32]map[int32]command.Command)
	b.hasBounds = false
}

func (b *Buffer) recomputeBoundsLocked() {
	if len(b.ticks) == 0 {
		b.hasBounds = false
		return
	}
	first := true
	for t := range b.ticks {
		if first || t < b.oldest {
			b.oldest = t
		}
		if first || t > b.newest {
			b.newest = t
		}
		first = false
	}
	b.hasBounds = true
}
