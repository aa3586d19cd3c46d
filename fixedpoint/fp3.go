package fixedpoint

// FP3 is a deterministic 3D fixed-point vector.
type FP3 struct {
	X, Y, Z FP
}

// FP3Zero is the zero vector.
var FP3Zero = FP3{}

func (a FP3) Add(b FP3) FP3 { return FP3{a.X.Add(b.X), a.Y.Add(b.Y), a.Z.Add(b.Z)} }
func (a FP3) Sub(b FP3) FP3 { return FP3{a.X.Sub(b.X), a.Y.Sub(b.Y), a.Z.Sub(b.Z)} }
func (a FP3) Neg() FP3      { return FP3{a.X.Neg(), a.Y.Neg(), a.Z.Neg()} }
func (a FP3) Scale(s FP) FP3 {
	return FP3{a.X.Mul(s), a.Y.Mul(s), a.Z.Mul(s)}
}

// ScaleDiv divides every component by s.
func (a FP3) ScaleDiv(s FP) (FP3, error) {
	x, err := a.X.Div(s)
	if err != nil {
		return FP3Zero, err
	}
	y, err := a.Y.Div(s)
	if err != nil {
		return FP3Zero, err
	}
	z, err := a.Z.Div(s)
	if err != nil {
		return FP3Zero, err
	}
	return FP3{x, y, z}, nil
}

func (a FP3) Equal(b FP3) bool {
	return a.X.Equal(b.X) && a.Y.Equal(b.Y) && a.Z.Equal(b.Z)
}

// Dot computes the dot product, accumulating the three component products
// in the widened 128-bit domain before the final renormalization shift
// (spec ยง3 overflow-safety invariant).
func (a FP3) Dot(b FP3) FP {
	return FP{Raw: widenedDotRaw3(a, b)}
}

// Cross returns the 3D vector cross product.
func (a FP3) Cross(b FP3) FP3 {
	return FP3{
		X: a.Y.Mul(b.Z).Sub(a.Z.Mul(b.Y)),
		Y: a.Z.Mul(b.X).Sub(a.X.Mul(b.Z)),
		Z: a.X.Mul(b.Y).Sub(a.Y.Mul(b.X)),
	}
}

// SqrMagnitude returns the squared length using the widened accumulation.
func (a FP3) SqrMagnitude() FP {
	return a.Dot(a)
}

// Magnitude returns the length of the vector.
func (a FP3) Magnitude() (FP, error) {
	return a.SqrMagnitude().Sqrt()
}

// Distance3 returns the Euclidean distance between a and b.
func Distance3(a, b FP3) (FP, error) {
	return a.Sub(b).Magnitude()
}

// Normalized returns a unit vector in the direction of a.
func (a FP3) Normalized() (FP3, error) {
	mag, err := a.Magnitude()
	if err != nil {
		return FP3Zero, err
	}
	if mag.IsZero() {
		return FP3Zero, ErrDomain
	}
	return a.ScaleDiv(mag)
}

// Lerp3 linearly interpolates between a and b by t.
func Lerp3(a, b FP3, t FP) FP3 {
	return FP3{Lerp(a.X, b.X, t), Lerp(a.Y, b.Y, t), Lerp(a.Z, b.Z, t)}
}

// MoveTowards3 moves a toward target by at most maxDelta.
func MoveTowards3(a, target FP3, maxDelta FP) (FP3, error) {
	delta := target.Sub(a)
	dist, err := delta.Magnitude()
	if err != nil {
		return FP3Zero, err
	}
	if dist.Raw <= maxDelta.Raw || dist.IsZero() {
		return target, nil
	}
	dir, err := delta.ScaleDiv(dist)
	if err != nil {
		return FP3Zero, err
	}
	return a.Add(dir.Scale(maxDelta)), nil
}

// Angle3 returns the angle between a and b in radians.
func Angle3(a, b FP3) (FP, error) {
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
func (a FP3) ClampMagnitude(maxLength FP) (FP3, error) {
	sqr := a.SqrMagnitude()
	maxSqr := maxLength.Mul(maxLength)
	if sqr.Raw <= maxSqr.Raw {
		return a, nil
	}
	mag, err := sqr.Sqrt()
	if err != nil {
		return FP3Zero, err
	}
	dir, err := a.ScaleDiv(mag)
	if err != nil {
		return FP3Zero, err
	}
	return dir.Scale(maxLength), nil
}

// Reflect reflects a off a surface with the given unit normal.
func (a FP3) Reflect(normal FP3) FP3 {
	two := FromInt(2)
	factor := a.Dot(normal).Mul(two)
	return a.Sub(normal.Scale(factor))
}

// Project projects a onto b.
func (a FP3) Project(b FP3) (FP3, error) {
	denom := b.Dot(b)
	if denom.IsZero() {
		return FP3Zero, ErrDomain
	}
	scalar, err := a.Dot(b).Div(denom)
	if err != nil {
		return FP3Zero, err
	}
	return b.Scale(scalar), nil
}

func widenedDotRaw3(a, b FP3) int64 {
	hx, lx := mul64Signed(a.X.Raw, b.X.Raw)
	hy, ly := mul64Signed(a.Y.Raw, b.Y.Raw)
	hz, lz := mul64Signed(a.Z.Raw, b.Z.Raw)
	hi, lo := add128(hx, lx, hy, ly)
	hi, lo = add128(hi, lo, hz, lz)
	return narrow128Shifted(hi, lo)
}
