package replay

import "errors"

// ErrUnsupportedReplay is returned when a file's magic number doesn't
// match, or its version exceeds CurrentVersion.
var ErrUnsupportedReplay = errors.New("replay: unsupported replay file")

// ErrInvalidReplayFormat is returned when a file's structure is
// internally inconsistent (truncated, negative lengths, etc.) despite a
// recognized magic and version.
var ErrInvalidReplayFormat = errors.New("replay: invalid replay file format")

// ErrNotLoaded is returned by Player operations attempted before Load.
var ErrNotLoaded = errors.New("replay: no replay loaded")

// ErrNotRecording identifies an operation attempted while no recording is
// in progress. No Recorder method returns it: RecordTick ignores calls
// made while not recording, and Stop always returns the current Data.
var ErrNotRecording = errors.New("replay: not currently recording")
