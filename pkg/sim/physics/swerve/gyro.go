package swerve

import (
	"github.com/robotalks/swerve.go/pkg/geom"
	"github.com/robotalks/swerve.go/pkg/sim"
)

// Gyro reports the ground-truth heading of an object.
type Gyro struct {
	Object sim.Positionable2D
	Fault  error

	zero geom.Rotation
}

// NewGyro creates a Gyro attached to obj.
func NewGyro(obj sim.Positionable2D) *Gyro {
	return &Gyro{Object: obj}
}

// Heading implements drivetrain.Gyro.
func (g *Gyro) Heading() (geom.Rotation, error) {
	return g.Object.Position2D().Rotation.Minus(g.zero), g.Fault
}

// Zero makes the current heading read as zero.
func (g *Gyro) Zero() {
	g.zero = g.Object.Position2D().Rotation
}
