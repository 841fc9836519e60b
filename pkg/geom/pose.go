// Package geom provides the planar geometry used by the drivetrain:
// wrapped rotations, translations (r2.Point) and rigid poses.
package geom

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Rotate rotates vector p counter-clockwise by r.
func Rotate(p r2.Point, r Rotation) r2.Point {
	c, s := r.Cos(), r.Sin()
	return r2.Point{X: p.X*c - p.Y*s, Y: p.X*s + p.Y*c}
}

// Transform2D is a rigid transform: rotation applied after translation
// in the frame being transformed.
type Transform2D struct {
	Translation r2.Point
	Rotation    Rotation
}

// Twist2D is a motion along an arc of constant curvature,
// expressed in the frame at the start of the motion.
type Twist2D struct {
	DX, DY, DTheta float64
}

// Pose2D defines a field-relative pose.
type Pose2D struct {
	Translation r2.Point
	Rotation    Rotation
}

// NewPose2D creates a pose.
func NewPose2D(x, y float64, heading Rotation) Pose2D {
	return Pose2D{Translation: r2.Point{X: x, Y: y}, Rotation: heading}
}

// X is a shortcut to Translation.X.
func (p Pose2D) X() float64 { return p.Translation.X }

// Y is a shortcut to Translation.Y.
func (p Pose2D) Y() float64 { return p.Translation.Y }

// TransformBy applies a transform expressed in the pose's own frame.
func (p Pose2D) TransformBy(t Transform2D) Pose2D {
	return Pose2D{
		Translation: p.Translation.Add(Rotate(t.Translation, p.Rotation)),
		Rotation:    p.Rotation.Plus(t.Rotation),
	}
}

// RelativeTo expresses p in the frame of origin.
func (p Pose2D) RelativeTo(origin Pose2D) Pose2D {
	return Pose2D{
		Translation: Rotate(p.Translation.Sub(origin.Translation), origin.Rotation.Neg()),
		Rotation:    p.Rotation.Minus(origin.Rotation),
	}
}

// Exp integrates a twist starting from p, following the arc exactly.
func (p Pose2D) Exp(tw Twist2D) Pose2D {
	sinTheta, cosTheta := math.Sin(tw.DTheta), math.Cos(tw.DTheta)
	var s, c float64
	if math.Abs(tw.DTheta) < 1e-9 {
		s = 1.0 - tw.DTheta*tw.DTheta/6.0
		c = 0.5 * tw.DTheta
	} else {
		s = sinTheta / tw.DTheta
		c = (1 - cosTheta) / tw.DTheta
	}
	return p.TransformBy(Transform2D{
		Translation: r2.Point{
			X: tw.DX*s - tw.DY*c,
			Y: tw.DX*c + tw.DY*s,
		},
		Rotation: FromRadians(tw.DTheta),
	})
}

// Equal compares two poses within eps (meters and radians).
func (p Pose2D) Equal(p1 Pose2D, eps float64) bool {
	return math.Abs(p.X()-p1.X()) <= eps &&
		math.Abs(p.Y()-p1.Y()) <= eps &&
		p.Rotation.Equal(p1.Rotation, eps)
}

// String implements fmt.Stringer.
func (p Pose2D) String() string {
	return fmt.Sprintf("(%.3f, %.3f, %.1f°)", p.X(), p.Y(), p.Rotation.Degrees())
}
