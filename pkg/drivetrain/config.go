package drivetrain

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang/geo/r2"
	"gopkg.in/yaml.v2"

	"github.com/robotalks/swerve.go/pkg/kinematics"
)

// ModuleConfig places a module relative to the robot rotation center,
// in meters, +x forward, +y left.
type ModuleConfig struct {
	Name string  `yaml:"name"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

// Config defines the drivetrain geometry and limits.
type Config struct {
	Modules []ModuleConfig `yaml:"modules"`
	// MaxModuleSpeed is the maximum wheel speed in m/s.
	MaxModuleSpeed float64 `yaml:"max_module_speed"`
	// LockAngle is the steering angle in degrees used by Lock.
	LockAngle float64 `yaml:"lock_angle"`
}

// Defaults
const (
	DefaultMaxModuleSpeed float64 = 4.5
	DefaultLockAngle      float64 = 45
	DefaultHalfTrack      float64 = 0.3
)

var defaultConfig = Config{
	Modules: []ModuleConfig{
		{Name: "fl", X: DefaultHalfTrack, Y: DefaultHalfTrack},
		{Name: "fr", X: DefaultHalfTrack, Y: -DefaultHalfTrack},
		{Name: "bl", X: -DefaultHalfTrack, Y: DefaultHalfTrack},
		{Name: "br", X: -DefaultHalfTrack, Y: -DefaultHalfTrack},
	},
	MaxModuleSpeed: DefaultMaxModuleSpeed,
	LockAngle:      DefaultLockAngle,
}

var configFile string

func init() {
	if val := os.Getenv("SWERVE_CONFIG"); val != "" {
		configFile = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.MaxModuleSpeed, "max-module-speed", defaultConfig.MaxModuleSpeed, "Maximum module speed (m/s).")
	flag.Float64Var(&defaultConfig.LockAngle, "lock-angle", defaultConfig.LockAngle, "Module angle (degrees) when locked.")
	flag.StringVar(&configFile, "drivetrain", configFile, "YAML file with drivetrain geometry.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Modules = append([]ModuleConfig(nil), defaultConfig.Modules...)
	return &conf
}

// MustNewConfig creates a config with defaults and the geometry file,
// and fails on error.
func MustNewConfig() *Config {
	conf := NewConfig()
	if configFile != "" {
		if err := conf.LoadFile(configFile); err != nil {
			log.Fatalln(err)
		}
	}
	if err := conf.Validate(); err != nil {
		log.Fatalln(err)
	}
	return conf
}

// LoadFile overrides the config with values from a YAML file.
func (c *Config) LoadFile(fn string) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return err
	}
	return c.Load(data)
}

// Load overrides the config with YAML content. A modules list in the
// content replaces the configured modules entirely.
func (c *Config) Load(data []byte) error {
	var loaded Config
	if err := yaml.UnmarshalStrict(data, &loaded); err != nil {
		return fmt.Errorf("drivetrain config: %w", err)
	}
	if len(loaded.Modules) > 0 {
		c.Modules = loaded.Modules
	}
	if loaded.MaxModuleSpeed != 0 {
		c.MaxModuleSpeed = loaded.MaxModuleSpeed
	}
	if loaded.LockAngle != 0 {
		c.LockAngle = loaded.LockAngle
	}
	return nil
}

// Validate checks the config describes a usable drivetrain.
func (c *Config) Validate() error {
	if len(c.Modules) == 0 {
		return kinematics.ErrNoModules
	}
	if c.MaxModuleSpeed <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidMaxSpeed, c.MaxModuleSpeed)
	}
	names := make(map[string]bool)
	for _, m := range c.Modules {
		if m.Name == "" {
			continue
		}
		if names[m.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateName, m.Name)
		}
		names[m.Name] = true
	}
	// duplicated offsets are rejected when kinematics is built.
	_, err := c.NewKinematics()
	return err
}

// Points returns module offsets in order.
func (c *Config) Points() []r2.Point {
	points := make([]r2.Point, len(c.Modules))
	for i, m := range c.Modules {
		points[i] = r2.Point{X: m.X, Y: m.Y}
	}
	return points
}

// NewKinematics creates the Kinematics for the configured geometry.
func (c *Config) NewKinematics() (*kinematics.Kinematics, error) {
	return kinematics.NewKinematics(c.Points()...)
}

// ModuleName returns the configured name of the module at index, or the
// index itself when unnamed.
func (c *Config) ModuleName(index int) string {
	if index < len(c.Modules) && c.Modules[index].Name != "" {
		return c.Modules[index].Name
	}
	return fmt.Sprintf("#%d", index)
}
