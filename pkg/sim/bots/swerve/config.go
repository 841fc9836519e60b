package swerve

import (
	"flag"
	"log"

	"github.com/robotalks/swerve.go/pkg/bots/swerve"
	"github.com/robotalks/swerve.go/pkg/drivetrain"
	env "github.com/robotalks/swerve.go/pkg/l1/env/controller"
)

// Config defines the configuration for the bot.
type Config struct {
	Size         float64
	MaxSteerRate float64
	Drivetrain   *drivetrain.Config
	Controller   *swerve.Config
}

// Defaults
const (
	DefaultSize         float64 = 0.75
	DefaultMaxSteerRate float64 = 720
)

var defaultConfig = Config{
	Size:         DefaultSize,
	MaxSteerRate: DefaultMaxSteerRate,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.Size, "bot-size", defaultConfig.Size, "Size (m) of the bot, it's square.")
	flag.Float64Var(&defaultConfig.MaxSteerRate, "steer-rate-max", defaultConfig.MaxSteerRate, "Maximum module steering rate (degrees/s), 0 means unlimited.")
	drivetrain.SetupFlags()
	swerve.SetupFlags()
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Drivetrain = drivetrain.NewConfig()
	conf.Controller = swerve.NewConfig()
	return &conf
}

// MustNewConfig creates the default configuration with the drivetrain
// geometry file, and fails on error.
func MustNewConfig() *Config {
	conf := NewConfig()
	conf.Drivetrain = drivetrain.MustNewConfig()
	return conf
}

// NewController creates the Controller.
func (c *Config) NewController(e *env.Env) (*Controller, error) {
	return NewController(e, c)
}

// MustNewController creates the Controller and fails on error.
func (c *Config) MustNewController(e *env.Env) *Controller {
	ctl, err := c.NewController(e)
	if err != nil {
		log.Fatalln(err)
	}
	return ctl
}
