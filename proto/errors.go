package proto

import "errors"

// ErrUnknownTag is returned when decoding a message whose leading type
// tag byte is not one of the recognized wire messages.
var ErrUnknownTag = errors.New("proto: unknown message tag")

// ErrTruncated is returned when a message is shorter than its tag's
// fixed or declared-length payload requires.
var ErrTruncated = errors.New("proto: truncated message")
