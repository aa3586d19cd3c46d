package inputbuffer

import "errors"

// ErrEmpty is returned by bounds queries when the buffer holds no commands.
var ErrEmpty = errors.New("inputbuffer: empty")
