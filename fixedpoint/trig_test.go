package fixedpoint

import (
	"math"
	"testing"
)

func toFloat(a FP) float64 {
	return float64(a.Raw) / float64(One)
}

// tolerance allows for the CORDIC approximation's inherent precision loss;
// 32 iterations over a 32.32 format comfortably holds sub-millidegree
// accuracy, so this is generous rather than a tight bound.
const tolerance = 1e-4

func assertClose(t *testing.T, got, want float64, msg string) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Fatalf("%s: got %.6f, want %.6f (diff %.6f)", msg, got, want, math.Abs(got-want))
	}
}

func TestSinCosKnownAngles(t *testing.T) {
	cases := []struct {
		name        string
		theta       float64
		sin, cos    float64
	}{
		{"zero", 0, 0, 1},
		{"half_pi", math.Pi / 2, 1, 0},
		{"pi", math.Pi, 0, -1},
		{"neg_half_pi", -math.Pi / 2, -1, 0},
		{"quarter", math.Pi / 4, math.Sqrt2 / 2, math.Sqrt2 / 2},
	}
	for _, c := range cases {
		theta := fromFloat(c.theta)
		sin, cos := SinCos(theta)
		assertClose(t, toFloat(sin), c.sin, c.name+" sin")
		assertClose(t, toFloat(cos), c.cos, c.name+" cos")
	}
}

func TestSinCosPythagoreanIdentity(t *testing.T) {
	for _, deg := range []float64{0, 15, 47, 90, 123, 180, 271, 359} {
		theta := fromFloat(deg * math.Pi / 180)
		sin, cos := SinCos(theta)
		sum := sin.Mul(sin).Add(cos.Mul(cos))
		assertClose(t, toFloat(sum), 1.0, "sin^2+cos^2 at angle degrees")
	}
}

func TestAtan2KnownQuadrants(t *testing.T) {
	cases := []struct {
		name    string
		x, y    float64
		want    float64
	}{
		{"positive_x_axis", 1, 0, 0},
		{"positive_y_axis", 0, 1, math.Pi / 2},
		{"negative_x_axis", -1, 0, math.Pi},
		{"negative_y_axis", 0, -1, -math.Pi / 2},
		{"first_quadrant", 1, 1, math.Pi / 4},
		{"second_quadrant", -1, 1, 3 * math.Pi / 4},
	}
	for _, c := range cases {
		got := Atan2(fromFloat(c.y), fromFloat(c.x))
		assertClose(t, toFloat(got), c.want, c.name)
	}
}

func TestTanUndefinedAtHalfPiSaturates(t *testing.T) {
	got := Tan(HalfPi)
	if !got.Equal(MaxValue) {
		t.Fatalf("expected Tan(Pi/2) to saturate to MaxValue, got raw=%d", got.Raw)
	}
}

func TestAcosKnownValues(t *testing.T) {
	cases := []struct {
		x, want float64
	}{
		{1, 0},
		{-1, math.Pi},
		{0, math.Pi / 2},
	}
	for _, c := range cases {
		got := Acos(fromFloat(c.x))
		assertClose(t, toFloat(got), c.want, "acos")
	}
}

func TestReduceToPiStaysInRange(t *testing.T) {
	for _, deg := range []float64{0, 360, 720, -360, 1080, -1080} {
		theta := fromFloat(deg * math.Pi / 180)
		reduced := reduceToPi(theta)
		if reduced.Raw > Pi.Raw || reduced.Raw <= negPi.Raw {
			t.Fatalf("reduceToPi(%v deg) = %v, outside (-Pi, Pi]", deg, toFloat(reduced))
		}
	}
}
