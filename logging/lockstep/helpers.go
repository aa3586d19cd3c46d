// Package lockstep provides typed logging.Event helpers for the lockstep
// engine's observability points, following the same publish-a-typed-event
// pattern as the other logging/* packages.
package lockstep

import (
	"context"
	"strconv"

	"lockstepd/logging"
)

func engineActor() logging.EntityRef {
	return logging.EntityRef{Kind: logging.EntityKindEngine}
}

func playerActor(playerID int32) logging.EntityRef {
	return logging.EntityRef{ID: strconv.FormatInt(int64(playerID), 10), Kind: logging.EntityKindPlayer}
}

const (
	// EventTickExecuted is emitted after a confirmed or predicted tick runs.
	EventTickExecuted logging.EventType = "lockstep.tick_executed"
	// EventDesyncDetected is emitted when a peer's sync hash disagrees with
	// the local hash at the same tick.
	EventDesyncDetected logging.EventType = "lockstep.desync_detected"
	// EventRollback is emitted whenever a rollback is attempted, successful
	// or not.
	EventRollback logging.EventType = "lockstep.rollback"
	// EventCommandRejected is emitted when an inbound command fails to
	// decode or references an unknown kind.
	EventCommandRejected logging.EventType = "lockstep.command_rejected"
	// EventReplayLifecycle is emitted for replay start/stop/seek/finish.
	EventReplayLifecycle logging.EventType = "lockstep.replay_lifecycle"
)

// TickExecutedPayload captures whether a tick was confirmed or predicted.
type TickExecutedPayload struct {
	Predicted bool   `json:"predicted"`
	Hash      uint64 `json:"hash,omitempty"`
}

// TickExecuted publishes a debug-severity tick completion event.
func TickExecuted(ctx context.Context, pub logging.Publisher, tick uint64, payload TickExecutedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickExecuted,
		Tick:     tick,
		Actor:    engineActor(),
		Severity: logging.SeverityDebug,
		Category: "lockstep",
		Payload:  payload,
	})
}

// DesyncPayload captures the conflicting hashes and the peer that reported
// them.
type DesyncPayload struct {
	LocalHash  uint64 `json:"localHash"`
	RemoteHash uint64 `json:"remoteHash"`
	PeerID     int32  `json:"peerId"`
}

// DesyncDetected publishes an error-severity desync event.
func DesyncDetected(ctx context.Context, pub logging.Publisher, tick uint64, payload DesyncPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDesyncDetected,
		Tick:     tick,
		Actor:    playerActor(payload.PeerID),
		Severity: logging.SeverityError,
		Category: "lockstep",
		Payload:  payload,
	})
}

// RollbackPayload captures the rollback target and whether it succeeded.
type RollbackPayload struct {
	TargetTick   int32 `json:"targetTick"`
	RestoredTick int32 `json:"restoredTick,omitempty"`
	Succeeded    bool  `json:"succeeded"`
	Reason       string `json:"reason,omitempty"`
}

// Rollback publishes a rollback attempt event.
func Rollback(ctx context.Context, pub logging.Publisher, tick uint64, payload RollbackPayload) {
	if pub == nil {
		return
	}
	severity := logging.SeverityInfo
	if !payload.Succeeded {
		severity = logging.SeverityWarn
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRollback,
		Tick:     tick,
		Actor:    engineActor(),
		Severity: severity,
		Category: "lockstep",
		Payload:  payload,
	})
}

// CommandRejectedPayload captures why a command was dropped and who sent it.
type CommandRejectedPayload struct {
	PlayerID int32  `json:"playerId"`
	Reason   string `json:"reason"`
}

// CommandRejected publishes a warn-severity dropped-command event.
func CommandRejected(ctx context.Context, pub logging.Publisher, tick uint64, payload CommandRejectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCommandRejected,
		Tick:     tick,
		Actor:    playerActor(payload.PlayerID),
		Severity: logging.SeverityWarn,
		Category: "lockstep",
		Payload:  payload,
	})
}

// ReplayLifecyclePayload captures a replay state transition.
type ReplayLifecyclePayload struct {
	Stage string `json:"stage"` // "recording_started", "playback_started", "seek", "finished", ...
}

// ReplayLifecycle publishes an info-severity replay lifecycle event.
func ReplayLifecycle(ctx context.Context, pub logging.Publisher, tick uint64, payload ReplayLifecyclePayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventReplayLifecycle,
		Tick:     tick,
		Actor:    engineActor(),
		Severity: logging.SeverityInfo,
		Category: "lockstep",
		Payload:  payload,
	})
}
