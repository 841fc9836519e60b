package swerve

import (
	"time"

	"github.com/golang/geo/r2"

	"github.com/robotalks/swerve.go/pkg/drivetrain"
	fx "github.com/robotalks/swerve.go/pkg/framework"
	"github.com/robotalks/swerve.go/pkg/geom"
	"github.com/robotalks/swerve.go/pkg/kinematics"
	"github.com/robotalks/swerve.go/pkg/sim"
	"github.com/robotalks/swerve.go/pkg/sim/physics"
)

// Engine moves an object by the motion of its swerve modules.
type Engine struct {
	Object  sim.Placeable2D
	Modules []*Module
	Gyro    *Gyro

	kinematics *kinematics.Kinematics
	last       time.Time
}

// New creates the engine with modules mounted at points.
func New(obj sim.Placeable2D, points ...r2.Point) (*Engine, error) {
	k, err := kinematics.NewKinematics(points...)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		Object:     obj,
		Modules:    make([]*Module, len(points)),
		Gyro:       NewGyro(obj),
		kinematics: k,
	}
	for i := range e.Modules {
		e.Modules[i] = NewModule(geom.Zero)
	}
	return e, nil
}

// Points returns module mounting points.
func (e *Engine) Points() []r2.Point {
	return e.kinematics.Points()
}

// DriveModules returns the modules for a Drivetrain.
func (e *Engine) DriveModules() []drivetrain.Module {
	modules := make([]drivetrain.Module, len(e.Modules))
	for i, m := range e.Modules {
		modules[i] = m
	}
	return modules
}

// SetMaxSteerRate sets the steering rate limit (radians/s) of all modules.
func (e *Engine) SetMaxSteerRate(rate float64) {
	for _, m := range e.Modules {
		m.MaxSteerRate = rate
	}
}

// AddToLoop implements LoopAdder.
func (e *Engine) AddToLoop(l *fx.Loop) {
	l.AddController(physics.PrLvSimulate, fx.ControlFunc(e.Simulate))
}

// Simulate is a controller advancing the simulation to current time.
func (e *Engine) Simulate(cc fx.ControlContext) error {
	_, err := e.Advance(cc)
	return err
}

// Advance steps the simulation to the time of ctx. The first call only
// records the time.
func (e *Engine) Advance(ctx physics.Context) (bool, error) {
	now, last := ctx.Time(), e.last
	if !now.After(last) {
		return false, nil
	}
	e.last = now
	if last.IsZero() {
		return false, nil
	}
	return e.Step(now.Sub(last))
}

// Step moves all modules by dt and places the object by the realized
// chassis motion. It reports whether the object moved.
func (e *Engine) Step(dt time.Duration) (bool, error) {
	deltas := make([]kinematics.ModulePosition, len(e.Modules))
	for i, m := range e.Modules {
		deltas[i] = m.Step(dt)
	}
	twist, err := e.kinematics.ToTwist(deltas)
	if err != nil {
		return false, err
	}
	if twist == (geom.Twist2D{}) {
		return false, nil
	}
	e.Object.SetPose2D(e.Object.Position2D().Exp(twist))
	return true, nil
}
