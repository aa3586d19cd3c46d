package replay

import (
	"sync"

	"lockstepd/command"
	"lockstepd/simulation"
)

// AllowedSpeeds lists the playback speed multipliers the reference
// design supports. SetSpeed rejects anything outside this set.
var AllowedSpeeds = []float64{0.25, 0.5, 1, 2, 4}

// OnTickPlayed is invoked once per played tick with that tick's recorded
// commands. The host engine feeds these straight into simulation.Tick;
// replay playback never goes through the network or the predictor.
type OnTickPlayed func(tick int32, commands []command.Command)

// OnPlaybackFinished is invoked once playback reaches the end of the
// recording.
type OnPlaybackFinished func()

// Player drives a loaded Data's tick log at an adjustable speed and
// supports seeking, which for backward motion requires rollback and
// resimulation through the injected Simulation.
type Player struct {
	mu  sync.Mutex
	sim *simulation.Simulation

	data       Data
	indexByTick map[int32]int
	loaded     bool

	playing bool
	paused  bool
	speed   float64

	accumulatorMs float64
	cursor        int

	onTickPlayed       OnTickPlayed
	onPlaybackFinished OnPlaybackFinished
}

// NewPlayer returns an unloaded Player. sim is used only by Seek*, which
// needs rollback/resimulate access; pass nil if seeking will never be
// used.
func NewPlayer(sim *simulation.Simulation) *Player {
	return &Player{sim: sim, speed: 1}
}

// SetCallbacks installs the tick-played and playback-finished hooks.
func (p *Player) SetCallbacks(onTickPlayed OnTickPlayed, onPlaybackFinished OnPlaybackFinished) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onTickPlayed = onTickPlayed
	p.onPlaybackFinished = onPlaybackFinished
}

// Load installs data for playback, resetting the cursor to the start.
func (p *Player) Load(data Data) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = data
	p.indexByTick = make(map[int32]int, len(data.Ticks))
	for i, entry := range data.Ticks {
		p.indexByTick[entry.Tick] = i
	}
	p.loaded = true
	p.cursor = 0
	p.accumulatorMs = 0
	p.playing = false
	p.paused = false
}

// Play begins playback from the current cursor position.
func (p *Player) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		return ErrNotLoaded
	}
	p.playing = true
	p.paused = false
	return nil
}

// Pause suspends playback without resetting the cursor.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		return ErrNotLoaded
	}
	p.paused = true
	return nil
}

// Resume continues playback after a Pause.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		return ErrNotLoaded
	}
	p.paused = false
	return nil
}

// Stop halts playback and resets the cursor to the start.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		return ErrNotLoaded
	}
	p.playing = false
	p.paused = false
	p.cursor = 0
	p.accumulatorMs = 0
	return nil
}

// SetSpeed changes the playback speed multiplier; speed must be one of
// AllowedSpeeds.
func (p *Player) SetSpeed(speed float64) error {
	for _, allowed := range AllowedSpeeds {
		if speed == allowed {
			p.mu.Lock()
			p.speed = speed
			p.mu.Unlock()
			return nil
		}
	}
	return ErrInvalidReplayFormat
}

// Update advances the playback clock by dtSeconds (scaled by the current
// speed multiplier), firing onTickPlayed for every tick the accumulator
// permits, and onPlaybackFinished once the tick log is exhausted.
func (p *Player) Update(dtSeconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded || !p.playing || p.paused {
		return
	}
	interval := float64(p.data.Metadata.TickIntervalMs)
	if interval <= 0 {
		return
	}
	p.accumulatorMs += dtSeconds * 1000 * p.speed
	for p.accumulatorMs >= interval && p.playing {
		if p.cursor >= len(p.data.Ticks) {
			p.playing = false
			if p.onPlaybackFinished != nil {
				p.onPlaybackFinished()
			}
			break
		}
		entry := p.data.Ticks[p.cursor]
		p.cursor++
		if p.onTickPlayed != nil {
			p.onTickPlayed(entry.Tick, entry.Commands)
		}
		p.accumulatorMs -= interval
	}
}

// SeekToTick moves playback to targetTick. Forward motion simply walks
// the simulation ahead tick by tick (the current state is already a
// valid starting point); backward motion rolls back to the nearest
// earlier snapshot and resimulates up to the target, saving a fresh
// snapshot every 5 ticks so later seeks stay cheap.
func (p *Player) SeekToTick(targetTick int32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		return ErrNotLoaded
	}
	if p.sim == nil {
		return ErrInvalidReplayFormat
	}

	currentTick := p.sim.World().Tick()
	if targetTick >= currentTick {
		for t := currentTick; t < targetTick; t++ {
			p.sim.Tick(p.commandsAtLocked(t))
		}
	} else {
		restoredTick, err := p.sim.Rollback(targetTick)
		if err != nil {
			return err
		}
		for t := restoredTick; t < targetTick; t++ {
			p.sim.Tick(p.commandsAtLocked(t))
			if (t+1)%5 == 0 {
				p.sim.CreateSnapshot()
			}
		}
	}

	if idx, ok := p.indexByTick[targetTick]; ok {
		p.cursor = idx
	} else {
		p.cursor = p.nearestCursorAtOrAfterLocked(targetTick)
	}
	p.accumulatorMs = 0
	return nil
}

// SeekToProgress seeks to the tick fraction (clamped to 0..1) of the way
// through the recording's total ticks, rounded down.
func (p *Player) SeekToProgress(fraction float64) error {
	p.mu.Lock()
	total := p.data.Metadata.TotalTicks
	p.mu.Unlock()
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	target := int32(fraction * float64(total))
	return p.SeekToTick(target)
}

func (p *Player) commandsAtLocked(tick int32) []command.Command {
	if idx, ok := p.indexByTick[tick]; ok {
		return p.data.Ticks[idx].Commands
	}
	return nil
}

func (p *Player) nearestCursorAtOrAfterLocked(tick int32) int {
	for i, entry := range p.data.Ticks {
		if entry.Tick >= tick {
			return i
		}
	}
	return len(p.data.Ticks)
}

// Progress returns how far playback has advanced through the tick log,
// in [0, 1].
func (p *Player) Progress() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.data.Ticks) == 0 {
		return 0
	}
	return float64(p.cursor) / float64(len(p.data.Ticks))
}
