package replay

import (
	"sync"

	"lockstepd/command"
)

// Recorder captures a session's command stream tick by tick. Each
// recorded command is deep-copied via a serialize/deserialize round trip
// through the registry, so later mutation of the caller's command value
// can never corrupt the recording.
type Recorder struct {
	mu        sync.Mutex
	registry  *command.Registry
	recording bool
	data      Data
}

// NewRecorder returns a Recorder that decodes deep copies using registry.
func NewRecorder(registry *command.Registry) *Recorder {
	return &Recorder{registry: registry}
}

// Start opens a new recording, fixing the session's player count, tick
// interval, and PRNG seed into its metadata.
func (r *Recorder) Start(sessionID string, playerCount, tickIntervalMs, seed int32, recordedAtUnixMs int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = true
	r.data = Data{
		Metadata: Metadata{
			Version:        CurrentVersion,
			SessionID:      sessionID,
			RecordedAt:     recordedAtUnixMs,
			PlayerCount:    playerCount,
			TickIntervalMs: tickIntervalMs,
			RandomSeed:     seed,
		},
	}
}

// RecordTick appends a deep copy of commands at tick to the recording.
func (r *Recorder) RecordTick(tick int32, commands []command.Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.recording {
		return
	}
	copies := make([]command.Command, 0, len(commands))
	for _, cmd := range commands {
		clone, err := r.registry.Deserialize(cmd.Serialize())
		if err != nil {
			continue
		}
		copies = append(copies, clone)
	}
	r.data.Ticks = append(r.data.Ticks, TickEntry{Tick: tick, Commands: copies})
}

// Stop freezes the recording's metadata (total ticks, duration) and
// returns the finished Data. Recording is disabled afterward; call Start
// again to begin a new one.
func (r *Recorder) Stop(totalTicks int32, durationMs int64) Data {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recording = false
	r.data.Metadata.TotalTicks = totalTicks
	r.data.Metadata.DurationMs = durationMs
	return r.data
}

// Recording reports whether Start has been called without a matching
// Stop.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recording
}
