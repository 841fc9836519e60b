package kinematics

import (
	"fmt"

	"github.com/golang/geo/r2"

	"github.com/robotalks/swerve.go/pkg/geom"
)

// ChassisSpeeds is the robot-frame velocity of the chassis.
type ChassisSpeeds struct {
	// VX is the forward velocity (m/s).
	VX float64
	// VY is the leftward velocity (m/s).
	VY float64
	// Omega is the counter-clockwise angular velocity (rad/s).
	Omega float64
}

// FromFieldRelative converts a field-relative command into robot frame
// given the current robot heading.
func FromFieldRelative(vx, vy, omega float64, heading geom.Rotation) ChassisSpeeds {
	v := geom.Rotate(r2.Point{X: vx, Y: vy}, heading.Neg())
	return ChassisSpeeds{VX: v.X, VY: v.Y, Omega: omega}
}

// ToFieldRelative converts robot-frame speeds into field frame.
func (s ChassisSpeeds) ToFieldRelative(heading geom.Rotation) ChassisSpeeds {
	v := geom.Rotate(r2.Point{X: s.VX, Y: s.VY}, heading)
	return ChassisSpeeds{VX: v.X, VY: v.Y, Omega: s.Omega}
}

// String implements fmt.Stringer.
func (s ChassisSpeeds) String() string {
	return fmt.Sprintf("vx=%.3f vy=%.3f ω=%.3f", s.VX, s.VY, s.Omega)
}

// ModuleState is the velocity of a single module, either commanded or measured.
type ModuleState struct {
	// Speed is signed, positive drives the wheel forward along Angle.
	Speed float64
	Angle geom.Rotation
}

// Vector returns the velocity vector of the module.
func (s ModuleState) Vector() r2.Point {
	return s.Angle.Project(s.Speed)
}

// Optimize is a shortcut of Optimize(s, current).
func (s ModuleState) Optimize(current geom.Rotation) ModuleState {
	return Optimize(s, current)
}

// String implements fmt.Stringer.
func (s ModuleState) String() string {
	return fmt.Sprintf("%.3fm/s@%.1f°", s.Speed, s.Angle.Degrees())
}

// ModulePosition is the measured cumulative distance and current angle of a module.
type ModulePosition struct {
	Distance float64
	Angle    geom.Rotation
}

// String implements fmt.Stringer.
func (p ModulePosition) String() string {
	return fmt.Sprintf("%.3fm@%.1f°", p.Distance, p.Angle.Degrees())
}
