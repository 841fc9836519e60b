// Package swerve simulates a swerve drive robot as an L1 controller.
package swerve

import (
	"math"
	"slices"

	"github.com/golang/geo/r2"

	"github.com/robotalks/swerve.go/pkg/bots/swerve"
	"github.com/robotalks/swerve.go/pkg/drivetrain"
	fx "github.com/robotalks/swerve.go/pkg/framework"
	"github.com/robotalks/swerve.go/pkg/geom"
	"github.com/robotalks/swerve.go/pkg/kinematics"
	env "github.com/robotalks/swerve.go/pkg/l1/env/controller"
	"github.com/robotalks/swerve.go/pkg/sim"
	physics "github.com/robotalks/swerve.go/pkg/sim/physics/swerve"
)

// Controller is the L1 controller.
type Controller struct {
	Env *env.Env

	Outline r2.Rect
	Pose    geom.Pose2D
	Physics *physics.Engine
	Bot     *swerve.Controller

	sim.ObjectsChangeCaster

	changes      int
	notifiedMods []kinematics.ModuleState
}

// NewController creates the controller: simulated modules laid out by the
// drivetrain geometry, driven by a swerve controller.
func NewController(e *env.Env, conf *Config) (*Controller, error) {
	if err := conf.Drivetrain.Validate(); err != nil {
		return nil, err
	}
	c := &Controller{
		Env:     e,
		Outline: sim.SquareOutline(conf.Size),
		changes: 1, // send initial object change.
	}
	engine, err := physics.New(c, conf.Drivetrain.Points()...)
	if err != nil {
		return nil, err
	}
	engine.SetMaxSteerRate(conf.MaxSteerRate * math.Pi / 180)
	dt, err := drivetrain.New(conf.Drivetrain, engine.DriveModules(), engine.Gyro)
	if err != nil {
		return nil, err
	}
	c.Physics = engine
	c.Bot = conf.Controller.NewController(e, dt)
	return c, nil
}

// Name implements Named.
func (c *Controller) Name() string {
	return c.Env.Config.Info.Ref.Name()
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(l *fx.Loop) {
	l.Add(c.Physics, c.Bot)
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(c.NotifyChanges))
}

// OutlineRect implements Rectangular.
func (c *Controller) OutlineRect() r2.Rect {
	return c.Outline
}

// Position2D implements Placeable2D.
func (c *Controller) Position2D() geom.Pose2D {
	return c.Pose
}

// SetPose2D implements Placeable2D.
func (c *Controller) SetPose2D(pose geom.Pose2D) geom.Pose2D {
	c.Pose = pose
	c.changes = 1
	return c.Pose
}

// ModuleStates returns the actual states of simulated modules.
func (c *Controller) ModuleStates() []kinematics.ModuleState {
	states := make([]kinematics.ModuleState, len(c.Physics.Modules))
	for i, m := range c.Physics.Modules {
		states[i] = m.State()
	}
	return states
}

// NotifyChanges notifies object changes when the robot moves or a
// module changes its state.
func (c *Controller) NotifyChanges(cc fx.ControlContext) error {
	states := c.ModuleStates()
	if !slices.Equal(states, c.notifiedMods) {
		c.changes++
	}
	changes := c.changes
	c.changes = 0
	if changes > 0 {
		c.notifiedMods = states
		c.ObjectsChanged(cc, c)
	}
	return nil
}
