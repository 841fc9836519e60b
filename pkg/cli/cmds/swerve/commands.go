package swerve

import (
	"math"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/swerve.go/pkg/cli/sh"
	"github.com/robotalks/swerve.go/pkg/geom"
	"github.com/robotalks/swerve.go/pkg/l1/msgs"
)

var (
	// CapsQueryCmd exposes SwerveCapsQuery command.
	CapsQueryCmd = ishell.Cmd{
		Name:    "swerve.caps",
		Aliases: []string{"sc"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.SwerveCapsQuery{})
		}),
	}

	// DriveCmd exposes SwerveDrive command in robot frame.
	DriveCmd = ishell.Cmd{
		Name:    "swerve.drive",
		Aliases: []string{"sd"},
		Help:    "VX(m/s) [VY(m/s)] [OMEGA(degrees/s)]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if msg, ok := driveMsg(c); ok {
				sh.DoCommand(c, msg)
			}
		}),
	}

	// FieldDriveCmd exposes SwerveDrive command in field frame.
	FieldDriveCmd = ishell.Cmd{
		Name:    "swerve.field",
		Aliases: []string{"sf"},
		Help:    "VX(m/s) [VY(m/s)] [OMEGA(degrees/s)]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if msg, ok := driveMsg(c); ok {
				msg.FieldRelative = true
				sh.DoCommand(c, msg)
			}
		}),
	}

	// StopCmd exposes SwerveStop command.
	StopCmd = ishell.Cmd{
		Name:    "swerve.stop",
		Aliases: []string{"ss"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.SwerveStop{})
		}),
	}

	// SetAngleCmd exposes SwerveSetAngle command.
	SetAngleCmd = ishell.Cmd{
		Name:    "swerve.angle",
		Aliases: []string{"sa"},
		Help:    "ANGLE(degrees)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			vals, ok := sh.FloatArgs(c, 1, "ANGLE")
			if !ok {
				return
			}
			sh.DoCommand(c, &msgs.SwerveSetAngle{Angle: geom.FromDegrees(vals[0]).Radians()})
		}),
	}

	// ZeroCmd points all wheels forward.
	ZeroCmd = ishell.Cmd{
		Name:    "swerve.zero",
		Aliases: []string{"sz"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.SwerveSetAngle{})
		}),
	}

	// LockCmd exposes SwerveLock command.
	LockCmd = ishell.Cmd{
		Name:    "swerve.lock",
		Aliases: []string{"sl"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.SwerveLock{})
		}),
	}

	// PoseQueryCmd exposes SwervePoseQuery command.
	PoseQueryCmd = ishell.Cmd{
		Name:    "swerve.pose",
		Aliases: []string{"sp"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.SwervePoseQuery{})
		}),
	}

	// ResetPoseCmd exposes SwerveResetPose command.
	ResetPoseCmd = ishell.Cmd{
		Name:    "swerve.reset",
		Aliases: []string{"sr"},
		Help:    "[X(m) Y(m) HEADING(degrees)]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			vals, ok := sh.FloatArgs(c, 0, "X", "Y", "HEADING")
			if !ok {
				return
			}
			pose := geom.NewPose2D(vals[0], vals[1], geom.FromDegrees(vals[2]))
			sh.DoCommand(c, &msgs.SwerveResetPose{Pose: msgs.PoseFrom(pose)})
		}),
	}
)

func driveMsg(c *ishell.Context) (*msgs.SwerveDrive, bool) {
	vals, ok := sh.FloatArgs(c, 1, "VX", "VY", "OMEGA")
	if !ok {
		return nil, false
	}
	return &msgs.SwerveDrive{
		VX:    vals[0],
		VY:    vals[1],
		Omega: vals[2] * math.Pi / 180,
	}, true
}

func init() {
	sh.AddCmds(
		&CapsQueryCmd,
		&DriveCmd,
		&FieldDriveCmd,
		&StopCmd,
		&SetAngleCmd,
		&ZeroCmd,
		&LockCmd,
		&PoseQueryCmd,
		&ResetPoseCmd,
	)
}
