package math

import (
	m "math"

	"golang.org/x/exp/constraints"
)

const (
	/** @brief An approximate representation of PI. */
	Pi float32 = 3.14159265358979323846
	/** @brief A multiplier used to convert degrees to radians. */
	Deg2Rad float32 = Pi / 180.0
	/** @brief A multiplier used to convert radians to degrees. */
	Rad2Deg float32 = 180.0 / Pi
	/** @brief Smallest positive number where 1.0 + FloatEpsilon != 1.0 */
	FloatEpsilon float32 = 1.192092896e-07
	/** @brief A huge number that should be larger than any valid number used. */
	Infinity float32 = 1e30
)

// Thin float32 wrappers so the rest of the engine never touches the
// float64 stdlib directly.

func Sin(x float32) float32 {
	return float32(m.Sin(float64(x)))
}

func Cos(x float32) float32 {
	return float32(m.Cos(float64(x)))
}

func Tan(x float32) float32 {
	return float32(m.Tan(float64(x)))
}

func Sqrt(x float32) float32 {
	return float32(m.Sqrt(float64(x)))
}

func Abs(x float32) float32 {
	return float32(m.Abs(float64(x)))
}

func Floor(x float32) float32 {
	return float32(m.Floor(float64(x)))
}

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Max returns the larger of the two values.
func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of the two values.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Saturate clamps x to [0, 1].
func Saturate(x float32) float32 {
	return Clamp(x, 0.0, 1.0)
}
