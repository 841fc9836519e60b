// Package drivetrain orchestrates swerve modules, a gyro, kinematics and
// odometry into a drivable robot base.
//
// A Drivetrain is single-writer: all calls are expected from one control
// loop goroutine.
package drivetrain

import (
	"fmt"
	"math"

	"github.com/golang/glog"

	fx "github.com/robotalks/swerve.go/pkg/framework"
	"github.com/robotalks/swerve.go/pkg/geom"
	"github.com/robotalks/swerve.go/pkg/kinematics"
	"github.com/robotalks/swerve.go/pkg/odometry"
)

// Drivetrain drives a set of swerve modules.
type Drivetrain struct {
	config     Config
	modules    []Module
	gyro       Gyro
	kinematics *kinematics.Kinematics
	odometry   *odometry.Odometry
	states     []kinematics.ModuleState
}

// New creates a Drivetrain. modules must be in the same order as
// conf.Modules. The initial pose is the origin facing the current gyro
// heading.
func New(conf *Config, modules []Module, gyro Gyro) (*Drivetrain, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if err := kinematics.CheckCount(len(conf.Modules), len(modules)); err != nil {
		return nil, err
	}
	if gyro == nil {
		return nil, ErrNoGyro
	}
	k, err := conf.NewKinematics()
	if err != nil {
		return nil, err
	}
	d := &Drivetrain{
		config:     *conf,
		modules:    append([]Module(nil), modules...),
		gyro:       gyro,
		kinematics: k,
		states:     make([]kinematics.ModuleState, len(modules)),
	}
	d.config.Modules = append([]ModuleConfig(nil), conf.Modules...)
	heading, positions, err := d.measure()
	if err != nil {
		return nil, err
	}
	// modules start holding the measured angles.
	for i, pos := range positions {
		d.states[i].Angle = pos.Angle
	}
	if d.odometry, err = odometry.New(len(modules), heading, positions, geom.Pose2D{Rotation: heading}); err != nil {
		return nil, err
	}
	return d, nil
}

// Config returns the configuration in use.
func (d *Drivetrain) Config() *Config {
	return &d.config
}

// Kinematics returns the kinematics built from configured geometry.
func (d *Drivetrain) Kinematics() *kinematics.Kinematics {
	return d.kinematics
}

// ModuleStates returns the last commanded module states.
func (d *Drivetrain) ModuleStates() []kinematics.ModuleState {
	return append([]kinematics.ModuleState(nil), d.states...)
}

// Pose returns the current odometry estimate.
func (d *Drivetrain) Pose() geom.Pose2D {
	return d.odometry.Pose()
}

// Drive commands chassis velocity. When fieldRelative is set, vx and vy are
// in the field frame and converted using the gyro heading. Every module is
// commanded even if some fail; the failures are returned aggregated.
// Non-finite values are rejected with ErrInvalidCommand before any module
// is touched.
func (d *Drivetrain) Drive(vx, vy, omega float64, fieldRelative bool) error {
	if err := CheckSpeeds(vx, vy, omega); err != nil {
		return err
	}
	speeds := kinematics.ChassisSpeeds{VX: vx, VY: vy, Omega: omega}
	if fieldRelative {
		heading, err := d.gyro.Heading()
		if err != nil {
			return fmt.Errorf("gyro: %w", err)
		}
		speeds = kinematics.FromFieldRelative(vx, vy, omega, heading)
	}
	states := d.kinematics.ToModuleStates(speeds, d.states)
	kinematics.Desaturate(states, d.config.MaxModuleSpeed)
	glog.V(5).Infof("drive %s: %v", speeds, states)

	var errs fx.AggregatedError
	for i, m := range d.modules {
		if err := m.SetDesiredState(states[i]); err != nil {
			errs.Add(fmt.Errorf("module %s: %w", d.config.ModuleName(i), err))
		}
	}
	copy(d.states, states)
	return errs.Aggregate()
}

// SetAllModuleAngles steers every module to angle without driving.
// The angle is applied as-is, without optimization.
func (d *Drivetrain) SetAllModuleAngles(angle geom.Rotation) error {
	if !finite(angle.Radians()) {
		return fmt.Errorf("%w: angle %v", ErrInvalidCommand, angle.Radians())
	}
	var errs fx.AggregatedError
	for i, m := range d.modules {
		if err := m.SetModuleAngle(angle); err != nil {
			errs.Add(fmt.Errorf("module %s: %w", d.config.ModuleName(i), err))
		}
		// a following zero-speed drive keeps the modules where they were steered.
		d.states[i] = kinematics.ModuleState{Angle: angle}
	}
	return errs.Aggregate()
}

// ZeroWheels steers every module straight forward.
func (d *Drivetrain) ZeroWheels() error {
	return d.SetAllModuleAngles(geom.Zero)
}

// Lock steers every module to the configured lock angle.
func (d *Drivetrain) Lock() error {
	return d.SetAllModuleAngles(geom.FromDegrees(d.config.LockAngle))
}

// UpdateOdometry reads the gyro and modules and advances the pose estimate.
func (d *Drivetrain) UpdateOdometry() (geom.Pose2D, error) {
	heading, positions, err := d.measure()
	if err != nil {
		return d.odometry.Pose(), err
	}
	return d.odometry.Update(heading, positions)
}

// ResetPose restarts odometry from pose using current measurements.
func (d *Drivetrain) ResetPose(pose geom.Pose2D) error {
	if !finite(pose.X(), pose.Y(), pose.Rotation.Radians()) {
		return fmt.Errorf("%w: pose %s", ErrInvalidCommand, pose)
	}
	heading, positions, err := d.measure()
	if err != nil {
		return err
	}
	return d.odometry.ResetPose(pose, heading, positions)
}

func (d *Drivetrain) measure() (geom.Rotation, []kinematics.ModulePosition, error) {
	var errs fx.AggregatedError
	heading, err := d.gyro.Heading()
	if err != nil {
		errs.Add(fmt.Errorf("gyro: %w", err))
	}
	positions := make([]kinematics.ModulePosition, len(d.modules))
	for i, m := range d.modules {
		if positions[i], err = m.Position(); err != nil {
			errs.Add(fmt.Errorf("module %s: %w", d.config.ModuleName(i), err))
		}
	}
	return heading, positions, errs.Aggregate()
}

// CheckSpeeds returns ErrInvalidCommand if any chassis speed is NaN or infinite.
func CheckSpeeds(vx, vy, omega float64) error {
	if !finite(vx, vy, omega) {
		return fmt.Errorf("%w: drive vx=%v vy=%v omega=%v", ErrInvalidCommand, vx, vy, omega)
	}
	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
