package worldstate

import "errors"

// ErrUnknownEntityType is returned when a snapshot references a typeId with
// no registered factory.
var ErrUnknownEntityType = errors.New("worldstate: unknown entity type")

// ErrTruncatedSnapshot is returned when a snapshot byte slice ends before a
// length-prefixed field is fully present.
var ErrTruncatedSnapshot = errors.New("worldstate: truncated snapshot")
