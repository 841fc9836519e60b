// Package swerve simulates swerve drive hardware: modules, a gyro and
// the chassis motion they produce.
package swerve

import (
	"math"
	"time"

	"github.com/robotalks/swerve.go/pkg/geom"
	"github.com/robotalks/swerve.go/pkg/kinematics"
)

// Module is a simulated swerve module.
// The wheel reaches the commanded speed immediately, while steering
// turns at most MaxSteerRate.
type Module struct {
	// MaxSteerRate is the steering rate limit in radians/s, 0 for unlimited.
	MaxSteerRate float64
	// Fault, when set, is reported by every operation.
	Fault error

	desired  kinematics.ModuleState
	angle    geom.Rotation
	distance float64
}

// NewModule creates a Module steered at angle.
func NewModule(angle geom.Rotation) *Module {
	return &Module{angle: angle, desired: kinematics.ModuleState{Angle: angle}}
}

// Position implements drivetrain.Module.
func (m *Module) Position() (kinematics.ModulePosition, error) {
	return kinematics.ModulePosition{Distance: m.distance, Angle: m.angle}, m.Fault
}

// SetDesiredState implements drivetrain.Module.
func (m *Module) SetDesiredState(state kinematics.ModuleState) error {
	if m.Fault != nil {
		return m.Fault
	}
	m.desired = state.Optimize(m.angle)
	return nil
}

// SetModuleAngle implements drivetrain.Module.
func (m *Module) SetModuleAngle(angle geom.Rotation) error {
	if m.Fault != nil {
		return m.Fault
	}
	m.desired = kinematics.ModuleState{Angle: angle}
	return nil
}

// Desired returns the state being executed.
func (m *Module) Desired() kinematics.ModuleState {
	return m.desired
}

// State returns the actual wheel speed and steering angle.
func (m *Module) State() kinematics.ModuleState {
	return kinematics.ModuleState{Speed: m.desired.Speed, Angle: m.angle}
}

// Step advances the module by dt and returns the wheel displacement.
func (m *Module) Step(dt time.Duration) kinematics.ModulePosition {
	secs := dt.Seconds()
	diff := m.desired.Angle.Minus(m.angle).Radians()
	if limit := m.MaxSteerRate * secs; m.MaxSteerRate > 0 && math.Abs(diff) > limit {
		diff = math.Copysign(limit, diff)
	}
	m.angle = m.angle.Plus(geom.FromRadians(diff))
	delta := kinematics.ModulePosition{Distance: m.desired.Speed * secs, Angle: m.angle}
	m.distance += delta.Distance
	return delta
}
