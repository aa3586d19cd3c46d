package command

import "errors"

// ErrUnknownKind is returned by the registry when no constructor is
// registered for a command's kind tag.
var ErrUnknownKind = errors.New("command: unknown kind")

// ErrTruncated is returned when a byte slice is too short to contain the
// fields a kind's payload requires.
var ErrTruncated = errors.New("command: truncated payload")
