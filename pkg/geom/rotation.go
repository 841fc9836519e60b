package geom

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/s1"
)

// Rotation is a planar rotation in radians, always wrapped into (-π, π].
type Rotation float64

// Common rotations.
const (
	Zero       Rotation = 0
	QuarterCCW Rotation = math.Pi / 2
	QuarterCW  Rotation = -math.Pi / 2
	Half       Rotation = math.Pi
)

// FromRadians creates Rotation from radians.
func FromRadians(r float64) Rotation {
	return Rotation(wrap(r))
}

// FromDegrees creates Rotation from degrees.
func FromDegrees(d float64) Rotation {
	return FromRadians(d * math.Pi / 180.0)
}

// FromVector returns the direction of a vector. The zero vector points at 0.
func FromVector(p r2.Point) Rotation {
	if p.X == 0 && p.Y == 0 {
		return Zero
	}
	return FromRadians(math.Atan2(p.Y, p.X))
}

// Plus adds another rotation.
func (r Rotation) Plus(r1 Rotation) Rotation {
	return FromRadians(float64(r) + float64(r1))
}

// Minus subtracts another rotation, the result is the shortest signed
// angular distance from r1 to r.
func (r Rotation) Minus(r1 Rotation) Rotation {
	return FromRadians(float64(r) - float64(r1))
}

// Neg returns the inverse rotation.
func (r Rotation) Neg() Rotation {
	return FromRadians(-float64(r))
}

// Radians gets rotation in radians.
func (r Rotation) Radians() float64 {
	return float64(r)
}

// Degrees gets rotation in degrees.
func (r Rotation) Degrees() float64 {
	return float64(r) * 180 / math.Pi
}

// Cos wraps math.Cos.
func (r Rotation) Cos() float64 {
	return math.Cos(float64(r))
}

// Sin wraps math.Sin.
func (r Rotation) Sin() float64 {
	return math.Sin(float64(r))
}

// Project projects distance along the rotation into X and Y.
func (r Rotation) Project(dist float64) r2.Point {
	return r2.Point{X: dist * r.Cos(), Y: dist * r.Sin()}
}

// Equal compares two rotations on the circle within eps radians.
func (r Rotation) Equal(r1 Rotation, eps float64) bool {
	return math.Abs(r.Minus(r1).Radians()) <= eps
}

func wrap(r float64) float64 {
	return float64(s1.Angle(r).Normalized())
}
