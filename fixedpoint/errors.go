package fixedpoint

import "errors"

// ErrDivideByZero is returned by Div when the divisor's raw value is zero.
var ErrDivideByZero = errors.New("fixedpoint: divide by zero")

// ErrDomain is returned by Sqrt (and anything built on it, such as
// Magnitude/Normalized) when the operand is outside the function's domain.
var ErrDomain = errors.New("fixedpoint: domain error")
