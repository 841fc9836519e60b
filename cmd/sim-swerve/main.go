package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	fx "github.com/robotalks/swerve.go/pkg/framework"
	"github.com/robotalks/swerve.go/pkg/l1"
	env "github.com/robotalks/swerve.go/pkg/l1/env/controller"
	swervebot "github.com/robotalks/swerve.go/pkg/sim/bots/swerve"
	"github.com/robotalks/swerve.go/pkg/sim/visualization/see"
)

func init() {
	env.SetControllerType("sim-swerve", l1.ControllerMeta{Description: "Simulation: swerve drive"})
	env.SetupFlags()
	see.SetupFlags()
	swervebot.SetupFlags()
}

func main() {
	flag.Parse()

	env := env.NewConfig().MustNewEnv()
	bot := swervebot.MustNewConfig().MustNewController(env)
	vis := see.NewConfig().MustNewAdapter()
	vis.Mapper = bot
	vis.Subscribe(bot)

	fx.NewLoop().
		Add(env, bot, vis).
		RunOrFail()
}
