package simulation

import "errors"

// ErrRollbackImpossible is returned when no snapshot exists at or before
// the requested rollback target. Simulation does not check a rollback
// window; the lockstep engine rejects out-of-window targets with its own
// errors.
var ErrRollbackImpossible = errors.New("simulation: rollback impossible, no snapshot at or before target")
