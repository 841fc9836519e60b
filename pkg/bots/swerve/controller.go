// Package swerve exposes a swerve Drivetrain as an L1 controller.
package swerve

import (
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/swerve.go/pkg/drivetrain"
	fx "github.com/robotalks/swerve.go/pkg/framework"
	"github.com/robotalks/swerve.go/pkg/geom"
	"github.com/robotalks/swerve.go/pkg/l1"
	"github.com/robotalks/swerve.go/pkg/l1/msgs"
)

// Controller drives a Drivetrain from L1 commands.
//
// A SwerveDrive command stays in effect and is re-issued every iteration
// until it's replaced, stopped or expired by CommandTimeout.
type Controller struct {
	Drivetrain     *drivetrain.Drivetrain
	Registrar      l1.Registrar
	CommandTimeout time.Duration

	drive      *msgs.SwerveDrive
	driveAt    time.Time
	lastStatus *msgs.SwerveStatus
}

// NewController creates a Controller.
func NewController(dt *drivetrain.Drivetrain) *Controller {
	return &Controller{
		Drivetrain:     dt,
		CommandTimeout: defaultConfig.CommandTimeout,
	}
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvSense, fx.ControlFunc(c.UpdateOdometry))
	l.AddController(fx.PrLvControl, fx.ControlFunc(c.HandleCommand))
	l.AddController(fx.PrLvAcuate, fx.ControlFunc(c.Execute))
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(c.NotifyStatus))
}

// Driving indicates a drive command is in effect.
func (c *Controller) Driving() bool {
	return c.drive != nil
}

// Caps builds the capabilities from drivetrain configuration.
func (c *Controller) Caps() *msgs.SwerveCaps {
	conf := c.Drivetrain.Config()
	caps := &msgs.SwerveCaps{
		MaxModuleSpeed: conf.MaxModuleSpeed,
		LockAngle:      geom.FromDegrees(conf.LockAngle).Radians(),
	}
	for i, m := range conf.Modules {
		caps.Modules = append(caps.Modules, &msgs.SwerveModuleInfo{
			Name: conf.ModuleName(i),
			X:    m.X,
			Y:    m.Y,
		})
	}
	return caps
}

// Status builds the current status.
func (c *Controller) Status() *msgs.SwerveStatus {
	return &msgs.SwerveStatus{
		Pose:    msgs.PoseFrom(c.Drivetrain.Pose()),
		Modules: msgs.ModuleStatesFrom(c.Drivetrain.ModuleStates()),
		Driving: c.Driving(),
	}
}

// UpdateOdometry is a sensing controller.
func (c *Controller) UpdateOdometry(cc fx.ControlContext) error {
	_, err := c.Drivetrain.UpdateOdometry()
	return err
}

// HandleCommand is a controller processing commands.
func (c *Controller) HandleCommand(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		cmdMsg, ok := mctx.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		var reply fx.Message
		switch m := cmdMsg.Command.Msg().(type) {
		case *msgs.SwerveCapsQuery:
			reply = c.Caps()
		case *msgs.SwerveDrive:
			if err := drivetrain.CheckSpeeds(m.VX, m.VY, m.Omega); err != nil {
				reply = msgs.NewCommandErr(err)
				break
			}
			c.drive, c.driveAt = m, cc.Time()
			reply = msgs.NewCommandOK()
		case *msgs.SwerveStop:
			reply = c.stopWith(c.Drivetrain.Drive(0, 0, 0, false))
		case *msgs.SwerveSetAngle:
			reply = c.stopWith(c.Drivetrain.SetAllModuleAngles(geom.FromRadians(m.Angle)))
		case *msgs.SwerveLock:
			reply = c.stopWith(c.Drivetrain.Lock())
		case *msgs.SwervePoseQuery:
			reply = msgs.PoseFrom(c.Drivetrain.Pose())
		case *msgs.SwerveResetPose:
			var pose geom.Pose2D
			if m.Pose != nil {
				pose = m.Pose.Pose2D()
			}
			reply = replyOf(c.Drivetrain.ResetPose(pose))
		default:
			return
		}
		mctx.MessageTaken()
		cmdMsg.Command.Done(reply)
	}))
	return nil
}

// Execute is a controller for acuation. It re-issues the drive command
// in effect.
func (c *Controller) Execute(cc fx.ControlContext) error {
	m := c.drive
	if m == nil {
		return nil
	}
	if c.CommandTimeout > 0 && cc.Time().Sub(c.driveAt) > c.CommandTimeout {
		glog.Warningf("drive command expired after %s, stop", cc.Time().Sub(c.driveAt))
		c.drive = nil
		return c.Drivetrain.Drive(0, 0, 0, false)
	}
	return c.Drivetrain.Drive(m.VX, m.VY, m.Omega, m.FieldRelative)
}

// NotifyStatus sends a SwerveStatus event when the status changes.
func (c *Controller) NotifyStatus(cc fx.ControlContext) error {
	status := c.Status()
	if c.lastStatus != nil && proto.Equal(status, c.lastStatus) {
		return nil
	}
	c.lastStatus = status
	if c.Registrar == nil {
		return nil
	}
	return c.Registrar.SendEvent(cc.Context(), status)
}

func (c *Controller) stopWith(err error) fx.Message {
	c.drive = nil
	return replyOf(err)
}

func replyOf(err error) fx.Message {
	if err != nil {
		return msgs.NewCommandErr(err)
	}
	return msgs.NewCommandOK()
}
