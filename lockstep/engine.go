// Package lockstep implements the deterministic tick engine: clock
// accumulation, input gating, prediction, rollback/resimulation, desync
// detection, and lifecycle. It owns the input buffer and predictor and
// drives the simulation; it never touches the network directly, instead
// broadcasting outbound messages through the injected Broadcaster and
// receiving inbound ones through OnCommandReceived / OnDesyncDetected.
package lockstep

import (
	"context"
	"sync"

	"lockstepd/command"
	"lockstepd/inputbuffer"
	llog "lockstepd/logging/lockstep"
	"lockstepd/logging"
	"lockstepd/simulation"
)

// Broadcaster is the outbound half of the network service's contract with
// the engine: reliable-ordered broadcast of locally generated commands and
// sync-hash checkpoints.
type Broadcaster interface {
	BroadcastCommand(cmd command.Command) error
	BroadcastSyncHash(tick int32, hash uint64, playerID int32) error
}

// Recorder is the replay subsystem's ingestion point. Engine calls
// RecordTick once per confirmed tick while recording is enabled.
type Recorder interface {
	RecordTick(tick int32, commands []command.Command)
}

type predictionKey struct {
	tick     int32
	playerID int32
}

// Engine is the host-facing lockstep state machine described by the
// reference design: Idle -> WaitingForPlayers -> Running <-> Paused ->
// Finished. It is not safe for concurrent use from multiple goroutines;
// the scheduling model is single-threaded cooperative, matching the
// reference's "one game-loop thread" assumption.
type Engine struct {
	mu sync.Mutex

	sim         *simulation.Simulation
	inputBuffer *inputbuffer.Buffer
	predictor   *inputbuffer.Predictor
	network     Broadcaster
	recorder    Recorder
	publisher   logging.Publisher

	config Config
	state  State

	localPlayerID int32
	playerCount   int32

	currentTick   int32
	confirmedTick int32
	accumulatorMs float64

	recording          bool
	pendingPredictions map[predictionKey]command.Command
}

// New constructs an Engine over an already-constructed Simulation, input
// buffer, and predictor. network may be nil for single-process use (tests,
// replay-only hosts); publisher may be nil to disable logging.
func New(sim *simulation.Simulation, buffer *inputbuffer.Buffer, predictor *inputbuffer.Predictor, network Broadcaster, publisher logging.Publisher, config Config) *Engine {
	return &Engine{
		sim:                sim,
		inputBuffer:        buffer,
		predictor:          predictor,
		network:            network,
		publisher:          publisher,
		config:             config,
		state:              Idle,
		pendingPredictions: make(map[predictionKey]command.Command),
	}
}

// SetRecorder attaches (or detaches, with nil) the replay recorder.
func (e *Engine) SetRecorder(r Recorder) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recorder = r
}

// SetNetwork attaches the outbound broadcaster. Exists to break the
// construction cycle between Engine and a network.Service that needs the
// Engine as its inbound EventHandler: construct the Engine with a nil
// Broadcaster, construct the network service with the Engine as handler,
// then call SetNetwork.
func (e *Engine) SetNetwork(n Broadcaster) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.network = n
}

// State returns the engine's current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// CurrentTick returns the tick the engine is about to execute (or is
// waiting to execute).
func (e *Engine) CurrentTick() int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentTick
}

// Initialize resets the simulation, input buffer, and pending predictions
// and seeds the deterministic PRNG. The predictor's history and accuracy
// counters are not reset. Valid only from Idle or Finished.
func (e *Engine) Initialize(localPlayerID, playerCount int32, seed uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Idle && e.state != Finished {
		return ErrInvalidTransition
	}
	e.sim.Initialize(seed)
	e.inputBuffer.Clear()
	e.localPlayerID = localPlayerID
	e.playerCount = playerCount
	e.currentTick = 0
	e.confirmedTick = 0
	e.accumulatorMs = 0
	e.recording = false
	e.pendingPredictions = make(map[predictionKey]command.Command)
	e.state = Idle
	return nil
}

// Start transitions Idle -> WaitingForPlayers. enableRecording turns on
// replay capture once the run reaches Running.
func (e *Engine) Start(enableRecording bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Idle {
		return ErrInvalidTransition
	}
	e.recording = enableRecording
	e.state = WaitingForPlayers
	return nil
}

// BeginRun represents arrival of the game-start signal: WaitingForPlayers
// -> Running.
func (e *Engine) BeginRun() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != WaitingForPlayers {
		return ErrInvalidTransition
	}
	e.state = Running
	return nil
}

// Stop terminates the engine immediately from any state.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Finished
	return nil
}

// Update converts dtSeconds to milliseconds, adds it to the accumulator,
// and drains as many ticks as the accumulator and engine state permit.
// Each call to Update either runs zero or more whole ticks atomically;
// there is no suspension point inside a tick or a rollback.
func (e *Engine) Update(ctx context.Context, dtSeconds float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running {
		return
	}
	e.accumulatorMs += dtSeconds * 1000
	interval := float64(e.config.TickIntervalMs)
	for e.accumulatorMs >= interval && e.state == Running {
		if e.canAdvanceLocked(e.currentTick) {
			e.executeConfirmedTickLocked(ctx)
		} else if e.config.UsePrediction {
			e.executePredictedTickLocked(ctx)
		} else {
			e.state = Paused
			break
		}
		e.accumulatorMs -= interval
	}
}

func (e *Engine) canAdvanceLocked(tick int32) bool {
	return e.inputBuffer.HasAll(tick, int(e.playerCount))
}

func (e *Engine) executeConfirmedTickLocked(ctx context.Context) {
	tick := e.currentTick
	if tick%5 == 0 {
		e.sim.CreateSnapshot()
	}
	commands := e.inputBuffer.AsList(tick)
	if e.recording && e.recorder != nil {
		e.recorder.RecordTick(tick, commands)
	}
	e.sim.Tick(commands)

	var hash uint64
	if e.config.SyncCheckInterval > 0 && uint32(tick)%e.config.SyncCheckInterval == 0 {
		hash = e.sim.StateHash()
		if e.network != nil {
			e.network.BroadcastSyncHash(tick, hash, e.localPlayerID)
		}
	}

	e.confirmedTick = tick
	e.currentTick = tick + 1
	llog.TickExecuted(ctx, e.publisher, uint64(tick), llog.TickExecutedPayload{Predicted: false, Hash: hash})

	if cutoff := e.currentTick - int32(e.config.MaxRollbackTicks) - 10; cutoff > 0 {
		e.inputBuffer.ClearBefore(cutoff)
	}
}

func (e *Engine) executePredictedTickLocked(ctx context.Context) {
	tick := e.currentTick
	if tick%5 == 0 {
		e.sim.CreateSnapshot()
	}

	commands := make([]command.Command, 0, e.playerCount)
	for playerID := int32(0); playerID < e.playerCount; playerID++ {
		if cmd, ok := e.inputBuffer.Get(tick, playerID); ok {
			commands = append(commands, cmd)
			continue
		}
		predicted := e.predictor.Predict(playerID, tick)
		commands = append(commands, predicted)
		e.pendingPredictions[predictionKey{tick: tick, playerID: playerID}] = predicted
	}

	e.sim.Tick(commands)
	e.currentTick = tick + 1
	llog.TickExecuted(ctx, e.publisher, uint64(tick), llog.TickExecutedPayload{Predicted: true})
}

// InputCommand stamps a locally issued command with the delayed target
// tick and the local player id, inserts it into the local input buffer,
// and broadcasts it over the network.
func (e *Engine) InputCommand(cmd command.Command) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cmd.Tick = e.currentTick + int32(e.config.InputDelayTicks)
	cmd.PlayerID = e.localPlayerID
	e.inputBuffer.Add(cmd)
	if e.network != nil {
		return e.network.BroadcastCommand(cmd)
	}
	return nil
}

// OnCommandReceived inserts a command arriving from the network into the
// input buffer, reconciles it against any pending prediction for the same
// (tick, player), and resumes a Paused engine if the missing input has now
// arrived.
func (e *Engine) OnCommandReceived(ctx context.Context, cmd command.Command) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.inputBuffer.Add(cmd)
	e.predictor.Observe(cmd)

	key := predictionKey{tick: cmd.Tick, playerID: cmd.PlayerID}
	if predicted, ok := e.pendingPredictions[key]; ok {
		matched := predicted.Kind() == cmd.Kind()
		e.predictor.Resolve(predicted, cmd)
		delete(e.pendingPredictions, key)
		if !matched {
			if err := e.rollbackLocked(ctx, cmd.Tick); err != nil {
				llog.Rollback(ctx, e.publisher, uint64(cmd.Tick), llog.RollbackPayload{
					TargetTick: cmd.Tick, Succeeded: false, Reason: err.Error(),
				})
			}
			return nil
		}
	}
	if e.state == Paused && e.canAdvanceLocked(e.currentTick) {
		e.state = Running
	}
	return nil
}

// Rollback restores the simulation to the nearest snapshot at or before
// targetTick, clears buffered state after that point, and resimulates
// forward up to currentTick for every tick whose inputs are fully present,
// stopping (without error) at the first tick still missing an input.
func (e *Engine) Rollback(ctx context.Context, targetTick int32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rollbackLocked(ctx, targetTick)
}

func (e *Engine) rollbackLocked(ctx context.Context, targetTick int32) error {
	if targetTick >= e.currentTick {
		return ErrRollbackFuture
	}
	if targetTick < e.currentTick-int32(e.config.MaxRollbackTicks) {
		return ErrRollbackTooOld
	}

	restoredTick, err := e.sim.Rollback(targetTick)
	if err != nil {
		llog.Rollback(ctx, e.publisher, uint64(targetTick), llog.RollbackPayload{
			TargetTick: targetTick, Succeeded: false, Reason: err.Error(),
		})
		return ErrNoSnapshot
	}

	e.inputBuffer.ClearAfter(restoredTick)
	for key := range e.pendingPredictions {
		delete(e.pendingPredictions, key)
	}

	resimulateTick := restoredTick
	for resimulateTick < e.currentTick {
		if !e.canAdvanceLocked(resimulateTick) {
			break
		}
		e.sim.Tick(e.inputBuffer.AsList(resimulateTick))
		resimulateTick++
	}
	e.currentTick = resimulateTick
	e.confirmedTick = resimulateTick - 1

	llog.Rollback(ctx, e.publisher, uint64(targetTick), llog.RollbackPayload{
		TargetTick: targetTick, RestoredTick: restoredTick, Succeeded: true,
	})
	return nil
}

// OnDesyncDetected is raised by the network service when a peer's reported
// sync hash disagrees with the local hash at the same tick. It logs the
// disagreement and attempts a recovering rollback.
func (e *Engine) OnDesyncDetected(ctx context.Context, peerID int32, tick int32, localHash, remoteHash uint64) {
	llog.DesyncDetected(ctx, e.publisher, uint64(tick), llog.DesyncPayload{
		LocalHash: localHash, RemoteHash: remoteHash, PeerID: peerID,
	})
	if err := e.Rollback(ctx, tick); err != nil {
		llog.Rollback(ctx, e.publisher, uint64(tick), llog.RollbackPayload{
			TargetTick: tick, Succeeded: false, Reason: err.Error(),
		})
	}
}

// PredictorAccuracy exposes the running accuracy of the prediction model,
// useful for host-side telemetry/UI.
func (e *Engine) PredictorAccuracy() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.predictor.Accuracy()
}
