package drivetrain

import (
	"errors"

	"github.com/robotalks/swerve.go/pkg/geom"
	"github.com/robotalks/swerve.go/pkg/kinematics"
)

// Module is a single swerve module: a steerable wheel with a drive encoder.
type Module interface {
	// Position reports the accumulated drive distance and current steering angle.
	Position() (kinematics.ModulePosition, error)
	// SetDesiredState commands speed and steering angle. The module is
	// expected to optimize the state against its current angle.
	SetDesiredState(kinematics.ModuleState) error
	// SetModuleAngle steers the module without driving it.
	SetModuleAngle(geom.Rotation) error
}

// Gyro reports the robot heading, counter-clockwise positive.
type Gyro interface {
	Heading() (geom.Rotation, error)
}

var (
	// ErrInvalidMaxSpeed indicates the maximum module speed is not positive.
	ErrInvalidMaxSpeed = errors.New("max module speed must be positive")
	// ErrDuplicateName indicates two modules are configured with the same name.
	ErrDuplicateName = errors.New("duplicated module name")
	// ErrNoGyro indicates a drivetrain is created without a gyro.
	ErrNoGyro = errors.New("gyro is required")
	// ErrInvalidCommand indicates a command carries a NaN or infinite value.
	ErrInvalidCommand = errors.New("invalid command")
)
