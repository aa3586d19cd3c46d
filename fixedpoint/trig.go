package fixedpoint

import "math"

// cordicIterations bounds both the atan2 vectoring loop and the sin/cos
// rotation loop, matching the 32-iteration contract in spec ยง4.1.
const cordicIterations = 32

// Pi and HalfPi are the FP representations of math.Pi and math.Pi/2. They
// are derived once at init time from the IEEE-754 double, which is the one
// place this package tolerates a floating-point literal: it is a
// compile-time constant baked into every build, not a runtime computation
// on simulation data.
var (
	Pi      FP
	HalfPi  FP
	TwoPi   FP
	negPi   FP
	atanTbl [cordicIterations]FP
	// cordicGainInv is 1/K where K is the CORDIC rotation gain, used to
	// pre-scale the rotation-mode seed so the final (x, y) pair is
	// directly cos(theta)/sin(theta) without a separate rescale pass.
	cordicGainInv FP
)

func init() {
	Pi = fromFloat(math.Pi)
	HalfPi = fromFloat(math.Pi / 2)
	TwoPi = fromFloat(2 * math.Pi)
	negPi = Pi.Neg()

	gain := 1.0
	angle := 1.0
	for i := 0; i < cordicIterations; i++ {
		atanTbl[i] = fromFloat(math.Atan(angle))
		gain *= math.Sqrt(1 + angle*angle)
		angle /= 2
	}
	cordicGainInv = fromFloat(1 / gain)
}

func fromFloat(f float64) FP {
	return FP{Raw: int64(math.Round(f * float64(One)))}
}

// reduceToPi normalizes theta into (-Pi, Pi].
func reduceToPi(theta FP) FP {
	if theta.Raw > negPi.Raw && theta.Raw <= Pi.Raw {
		return theta
	}
	k, err := theta.Div(TwoPi)
	if err != nil {
		return Zero
	}
	n := FromInt(k.Int())
	reduced := theta.Sub(n.Mul(TwoPi))
	for reduced.Raw > Pi.Raw {
		reduced = reduced.Sub(TwoPi)
	}
	for reduced.Raw <= negPi.Raw {
		reduced = reduced.Add(TwoPi)
	}
	return reduced
}

// SinCos returns (sin(theta), cos(theta)) computed via CORDIC rotation
// mode: range-reduce to (-Pi, Pi], fold into [-Pi/2, Pi/2] with a sign
// flip, then rotate the pre-scaled unit vector by theta one bit-angle at a
// time using the shared atan table. Pure integer, deterministic across
// platforms.
func SinCos(theta FP) (sin, cos FP) {
	reduced := reduceToPi(theta)
	flip := false
	if reduced.GreaterThan(HalfPi) {
		reduced = reduced.Sub(Pi)
		flip = true
	} else if reduced.LessThan(HalfPi.Neg()) {
		reduced = reduced.Add(Pi)
		flip = true
	}

	x := cordicGainInv
	y := Zero
	z := reduced
	for i := 0; i < cordicIterations; i++ {
		xs := FP{Raw: x.Raw >> uint(i)}
		ys := FP{Raw: y.Raw >> uint(i)}
		if z.Raw >= 0 {
			x, y = x.Sub(ys), y.Add(xs)
			z = z.Sub(atanTbl[i])
		} else {
			x, y = x.Add(ys), y.Sub(xs)
			z = z.Add(atanTbl[i])
		}
	}
	if flip {
		x, y = x.Neg(), y.Neg()
	}
	return y, x
}

// Sin returns sin(theta).
func Sin(theta FP) FP {
	s, _ := SinCos(theta)
	return s
}

// Cos returns cos(theta).
func Cos(theta FP) FP {
	_, c := SinCos(theta)
	return c
}

// MaxValue is the saturation ceiling used as Tan's result when cos(theta)
// is exactly zero.
var MaxValue = FP{Raw: maxInt64}

// MinValueFP is the saturation floor, exposed for symmetry with MaxValue.
var MinValueFP = FP{Raw: minInt64}

// Tan returns sin(theta)/cos(theta), or MaxValue when cos(theta) is zero.
func Tan(theta FP) FP {
	s, c := SinCos(theta)
	if c.IsZero() {
		return MaxValue
	}
	result, _ := s.Div(c)
	return result
}

// Atan2 computes the angle of the vector (x, y) using CORDIC vectoring
// mode with 32 iterations over a precomputed atan(2^-i) table. Large
// magnitudes are right-shifted equally (angle-invariant) before vectoring
// to keep the running vector within range.
func Atan2(y, x FP) FP {
	if x.IsZero() && y.IsZero() {
		return Zero
	}

	cx, cy := x, y
	flip := false
	if cx.Raw < 0 {
		cx, cy = cx.Neg(), cy.Neg()
		flip = true
	}

	// Right-shift both components equally until they fit comfortably
	// within the vectoring loop's working range; this preserves the
	// angle between them exactly.
	for cx.Raw > (int64(1)<<40) || cx.Raw < -(int64(1)<<40) ||
		cy.Raw > (int64(1)<<40) || cy.Raw < -(int64(1)<<40) {
		cx = FP{Raw: cx.Raw >> 1}
		cy = FP{Raw: cy.Raw >> 1}
	}

	z := Zero
	for i := 0; i < cordicIterations; i++ {
		xs := FP{Raw: cx.Raw >> uint(i)}
		ys := FP{Raw: cy.Raw >> uint(i)}
		if cy.Raw >= 0 {
			cx, cy = cx.Add(ys), cy.Sub(xs)
			z = z.Add(atanTbl[i])
		} else {
			cx, cy = cx.Sub(ys), cy.Add(xs)
			z = z.Sub(atanTbl[i])
		}
	}

	if flip {
		if y.Raw >= 0 {
			z = Pi.Add(z)
			if z.Raw > Pi.Raw {
				z = Pi
			}
		} else {
			z = negPi.Add(z)
		}
	}
	return reduceToPi(z)
}

// Acos returns acos(x) for x clamped to [-1, 1], via atan2(sqrt(1-x^2), x).
func Acos(x FP) FP {
	clamped := Clamp(x, FromInt(-1), FromInt(1))
	oneMinusSq := One - clamped.Mul(clamped).Raw
	if oneMinusSq < 0 {
		oneMinusSq = 0
	}
	root, _ := FP{Raw: oneMinusSq}.Sqrt()
	return Atan2(root, clamped)
}
