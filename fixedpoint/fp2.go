package fixedpoint

// FP2 is a deterministic 2D fixed-point vector.
type FP2 struct {
	X, Y FP
}

// FP2Zero is the zero vector.
var FP2Zero = FP2{}

func (a FP2) Add(b FP2) FP2 { return FP2{a.X.Add(b.X), a.Y.Add(b.Y)} }
func (a FP2) Sub(b FP2) FP2 { return FP2{a.X.Sub(b.X), a.Y.Sub(b.Y)} }
func (a FP2) Neg() FP2      { return FP2{a.X.Neg(), a.Y.Neg()} }
func (a FP2) Scale(s FP) FP2 {
	return FP2{a.X.Mul(s), a.Y.Mul(s)}
}

// ScaleDiv divides both components by s.
func (a FP2) ScaleDiv(s FP) (FP2, error) {
	x, err := a.X.Div(s)
	if err != nil {
		return FP2Zero, err
	}
	y, err := a.Y.Div(s)
	if err != nil {
		return FP2Zero, err
	}
	return FP2{x, y}, nil
}

func (a FP2) Equal(b FP2) bool { return a.X.Equal(b.X) && a.Y.Equal(b.Y) }

// Dot computes the dot product. The sum of products is accumulated in the
// widened domain before the 32.32 renormalization shift, so intermediate
// overflow cannot corrupt the low bits (spec ยง3).
func (a FP2) Dot(b FP2) FP {
	return FP{Raw: widenedDotRaw2(a, b)}
}

// Cross returns the 2D scalar "cross product" (a.X*b.Y - a.Y*b.X).
func (a FP2) Cross(b FP2) FP {
	return a.X.Mul(b.Y).Sub(a.Y.Mul(b.X))
}

// SqrMagnitude returns the squared length using the same widened
// accumulation as Dot.
func (a FP2) SqrMagnitude() FP {
	return a.Dot(a)
}

// Magnitude returns the length of the vector.
func (a FP2) Magnitude() (FP, error) {
	return a.SqrMagnitude().Sqrt()
}

// Distance2 returns the Euclidean distance between a and b.
func Distance2(a, b FP2) (FP, error) {
	return a.Sub(b).Magnitude()
}

// Normalized returns a unit vector in the direction of a. Returns
// ErrDomain if a is the zero vector.
func (a FP2) Normalized() (FP2, error) {
	mag, err := a.Magnitude()
	if err != nil {
		return FP2Zero, err
	}
	if mag.IsZero() {
		return FP2Zero, ErrDomain
	}
	return a.ScaleDiv(mag)
}

// Lerp2 linearly interpolates between a and b by t.
func Lerp2(a, b FP2, t FP) FP2 {
	return FP2{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t)}
}

// MoveTowards2 moves a toward target by at most maxDelta, stopping exactly
// at target if it would be overshot.
func MoveTowards2(a, target FP2, maxDelta FP) (FP2, error) {
	delta := target.Sub(a)
	dist, err := delta.Magnitude()
	if err != nil {
		return FP2Zero, err
	}
	if dist.Raw <= maxDelta.Raw || dist.IsZero() {
		return target, nil
	}
	dir, err := delta.ScaleDiv(dist)
	if err != nil {
		return FP2Zero, err
	}
	return a.Add(dir.Scale(maxDelta)), nil
}

// Angle returns the angle between a and b in radians, via Acos of the
// normalized dot product.
func Angle2(a, b FP2) (FP, error) {
	ma, err := a.Magnitude()
	if err != nil {
		return Zero, err
	}
	mb, err := b.Magnitude()
	if err != nil {
		return Zero, err
	}
	if ma.IsZero() || mb.IsZero() {
		return Zero, ErrDomain
	}
	denom := ma.Mul(mb)
	cos, err := a.Dot(b).Div(denom)
	if err != nil {
		return Zero, err
	}
	return Acos(cos), nil
}

// ClampMagnitude returns a scaled down to maxLength if it exceeds it.
func (a FP2) ClampMagnitude(maxLength FP) (FP2, error) {
	sqr := a.SqrMagnitude()
	maxSqr := maxLength.Mul(maxLength)
	if sqr.Raw <= maxSqr.Raw {
		return a, nil
	}
	mag, err := sqr.Sqrt()
	if err != nil {
		return FP2Zero, err
	}
	dir, err := a.ScaleDiv(mag)
	if err != nil {
		return FP2Zero, err
	}
	return dir.Scale(maxLength), nil
}

// Reflect reflects a off a surface with the given unit normal.
func (a FP2) Reflect(normal FP2) FP2 {
	two := FromInt(2)
	factor := a.Dot(normal).Mul(two)
	return a.Sub(normal.Scale(factor))
}

// Project projects a onto b.
func (a FP2) Project(b FP2) (FP2, error) {
	denom := b.Dot(b)
	if denom.IsZero() {
		return FP2Zero, ErrDomain
	}
	scalar, err := a.Dot(b).Div(denom)
	if err != nil {
		return FP2Zero, err
	}
	return b.Scale(scalar), nil
}

// widenedDotRaw2 computes the 32.32 dot product by summing the two
// component products in the 128-bit widened domain before the final
// renormalization shift.
func widenedDotRaw2(a, b FP2) int64 {
	hx, lx := mul64Signed(a.X.Raw, b.X.Raw)
	hy, ly := mul64Signed(a.Y.Raw, b.Y.Raw)
	hi, lo := add128(hx, lx, hy, ly)
	return narrow128Shifted(hi, lo)
}
