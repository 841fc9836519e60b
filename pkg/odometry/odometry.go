// Package odometry integrates swerve module displacements and gyro heading
// into a field-relative pose estimate.
//
// The integrator is first order: each tick the average module displacement,
// expressed in robot frame, is rotated into field frame using the pose
// heading at the start of the tick. Heading itself is never integrated from
// wheel data, it is taken from the gyro every tick.
package odometry

import (
	"github.com/golang/geo/r2"

	"github.com/robotalks/swerve.go/pkg/geom"
	"github.com/robotalks/swerve.go/pkg/kinematics"
)

// Odometry tracks the robot pose. It is not safe for concurrent use.
type Odometry struct {
	pose   geom.Pose2D
	offset geom.Rotation
	last   []kinematics.ModulePosition
}

// New creates an Odometry for moduleCount modules, seeded with the current
// gyro heading, module positions and the starting pose.
func New(moduleCount int, heading geom.Rotation, positions []kinematics.ModulePosition, start geom.Pose2D) (*Odometry, error) {
	if moduleCount <= 0 {
		return nil, kinematics.ErrNoModules
	}
	o := &Odometry{last: make([]kinematics.ModulePosition, moduleCount)}
	if err := o.ResetPose(start, heading, positions); err != nil {
		return nil, err
	}
	return o, nil
}

// Pose returns the current pose estimate.
func (o *Odometry) Pose() geom.Pose2D {
	return o.pose
}

// ResetPose restarts integration from pose. Later headings are reported
// relative to the gyro heading given here.
func (o *Odometry) ResetPose(pose geom.Pose2D, heading geom.Rotation, positions []kinematics.ModulePosition) error {
	if err := kinematics.CheckCount(len(o.last), len(positions)); err != nil {
		return err
	}
	o.pose = pose
	o.offset = pose.Rotation.Minus(heading)
	copy(o.last, positions)
	return nil
}

// Update advances the estimate with new measurements and returns the new pose.
func (o *Odometry) Update(heading geom.Rotation, positions []kinematics.ModulePosition) (geom.Pose2D, error) {
	if err := kinematics.CheckCount(len(o.last), len(positions)); err != nil {
		return o.pose, err
	}
	var disp r2.Point
	for i, pos := range positions {
		disp = disp.Add(pos.Angle.Project(pos.Distance - o.last[i].Distance))
	}
	disp = disp.Mul(1 / float64(len(positions)))
	o.pose = geom.Pose2D{
		Translation: o.pose.Translation.Add(geom.Rotate(disp, o.pose.Rotation)),
		Rotation:    heading.Plus(o.offset),
	}
	copy(o.last, positions)
	return o.pose, nil
}
