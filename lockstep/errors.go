package lockstep

import "errors"

// ErrInvalidTransition is returned when start/stop/initialize is called from
// a state that does not permit the requested transition.
var ErrInvalidTransition = errors.New("lockstep: invalid state transition")

// ErrRollbackTooOld is returned when a rollback target lies further back
// than maxRollbackTicks.
var ErrRollbackTooOld = errors.New("lockstep: rollback target outside retention window")

// ErrRollbackFuture is returned when a rollback target is at or after the
// current tick (nothing to undo).
var ErrRollbackFuture = errors.New("lockstep: rollback target is not in the past")

// ErrNoSnapshot is returned when no snapshot exists at or before the
// requested rollback target.
var ErrNoSnapshot = errors.New("lockstep: no snapshot at or before rollback target")
