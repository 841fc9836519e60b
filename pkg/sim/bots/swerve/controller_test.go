package swerve

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/swerve.go/pkg/drivetrain"
	fx "github.com/robotalks/swerve.go/pkg/framework"
	"github.com/robotalks/swerve.go/pkg/l1"
	"github.com/robotalks/swerve.go/pkg/l1/comm"
	env "github.com/robotalks/swerve.go/pkg/l1/env/controller"
	"github.com/robotalks/swerve.go/pkg/l1/msgs"
	"github.com/robotalks/swerve.go/pkg/sim/visualization/see"
)

type command struct {
	msg   fx.Message
	reply fx.Message
}

func (c *command) Msg() fx.Message { return c.msg }

func (c *command) Done(reply fx.Message) error {
	c.reply = reply
	return nil
}

type simulation struct {
	bot  *Controller
	loop *fx.Loop
	out  bytes.Buffer
	now  time.Time
}

func newEnv() *env.Env {
	return &env.Env{
		Config: &env.Config{
			Info: l1.ControllerInfo{Ref: l1.ControllerRef{Type: "sim-swerve", ID: "t1"}},
		},
		Registrar: &comm.RegistrarMux{},
	}
}

func newSimulation(t *testing.T) *simulation {
	bot, err := NewConfig().NewController(newEnv())
	require.NoError(t, err)
	s := &simulation{bot: bot, loop: fx.NewLoop(), now: time.Unix(100, 0)}
	vis, err := see.NewConfig().NewAdapter()
	require.NoError(t, err)
	vis.Mapper, vis.Out = bot, &s.out
	vis.Subscribe(bot)
	s.loop.Add(bot, vis)
	return s
}

func (s *simulation) step(d time.Duration) {
	s.now = s.now.Add(d)
	s.loop.Step(context.Background(), s.now)
}

func (s *simulation) do(msg fx.Message) *command {
	cmd := &command{msg: msg}
	s.loop.PostMessage(&l1.CommandMsg{Command: cmd})
	s.step(20 * time.Millisecond)
	return cmd
}

func (s *simulation) reported(t *testing.T) map[string]see.Object {
	objs := make(map[string]see.Object)
	dec := json.NewDecoder(&s.out)
	for {
		var msgs []see.Message
		err := dec.Decode(&msgs)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		for _, m := range msgs {
			if m.Action == see.ActionObject {
				objs[m.Object[see.PropID].(string)] = m.Object
			}
		}
	}
	return objs
}

func TestSimulatedDrive(t *testing.T) {
	s := newSimulation(t)
	cmd := s.do(&msgs.SwerveDrive{VX: 1})
	require.IsType(t, &msgs.CommandOK{}, cmd.reply)
	for i := 0; i < 10; i++ {
		s.step(20 * time.Millisecond)
	}
	require.InDelta(t, 0.2, s.bot.Pose.X(), 1e-9)
	require.InDelta(t, 0.2, s.bot.Bot.Drivetrain.Pose().X(), 1e-9)

	objs := s.reported(t)
	require.Contains(t, objs, "corner-lt")
	robot := objs["sim-swerve.t1"]
	require.NotNil(t, robot)
	require.Equal(t, "image", robot[see.PropType])
	require.Len(t, robot[see.PropPoints], 4)
	vec := objs["sim-swerve.t1.fl"]
	require.NotNil(t, vec)
	require.Equal(t, "vector", vec[see.PropType])
	require.InDelta(t, 1, vec[see.PropVector].(map[string]interface{})["x"], 1e-9)
}

func TestIdleIsQuiet(t *testing.T) {
	s := newSimulation(t)
	s.step(20 * time.Millisecond)
	require.NotZero(t, s.out.Len(), "initial report")
	s.out.Reset()
	s.step(20 * time.Millisecond)
	s.step(20 * time.Millisecond)
	require.Zero(t, s.out.Len())

	s.do(&msgs.SwerveSetAngle{Angle: 1})
	s.step(20 * time.Millisecond)
	require.NotZero(t, s.out.Len(), "steering is reported")
	require.InDelta(t, 0, s.bot.Pose.X(), 1e-9)
}

func TestConfigNewController(t *testing.T) {
	e := newEnv()
	conf := NewConfig()
	conf.Size = 1.2
	conf.MaxSteerRate = 90
	conf.Controller.CommandTimeout = 2 * time.Second
	bot, err := conf.NewController(e)
	require.NoError(t, err)
	require.InDelta(t, 1.2, bot.OutlineRect().Size().X, 1e-9)
	require.Len(t, bot.Physics.Modules, len(conf.Drivetrain.Modules))
	for _, m := range bot.Physics.Modules {
		require.InDelta(t, math.Pi/2, m.MaxSteerRate, 1e-9)
	}
	require.Equal(t, 2*time.Second, bot.Bot.CommandTimeout)
	require.Equal(t, e.Registrar, bot.Bot.Registrar)

	conf.Drivetrain.MaxModuleSpeed = 0
	_, err = conf.NewController(e)
	require.True(t, errors.Is(err, drivetrain.ErrInvalidMaxSpeed))
}
