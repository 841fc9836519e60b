package swerve

import (
	"flag"
	"time"

	"github.com/robotalks/swerve.go/pkg/drivetrain"
	env "github.com/robotalks/swerve.go/pkg/l1/env/controller"
)

// Config defines the configuration for the controller.
type Config struct {
	// CommandTimeout stops the robot when no drive command is received
	// for the duration. 0 disables the timeout.
	CommandTimeout time.Duration
}

// DefaultCommandTimeout is the default value of CommandTimeout.
const DefaultCommandTimeout = 500 * time.Millisecond

var defaultConfig = Config{
	CommandTimeout: DefaultCommandTimeout,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.CommandTimeout, "command-timeout", defaultConfig.CommandTimeout, "Stop driving if no drive command is received within the duration, 0 to disable.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController creates a controller using the config.
func (c *Config) NewController(e *env.Env, dt *drivetrain.Drivetrain) *Controller {
	ctl := NewController(dt)
	ctl.Registrar = e.Registrar
	ctl.CommandTimeout = c.CommandTimeout
	return ctl
}
