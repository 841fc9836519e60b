package see

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
)

// Config represents configuration for see. W and H are in meters, the
// world is centered at the origin.
type Config struct {
	W float64
	H float64
	// Output is the file receiving the reports, stdout when empty.
	Output string
}

var defaultConfig = Config{
	W: 10,
	H: 10,
}

// ErrInvalidArea indicates the visualization area is not positive.
var ErrInvalidArea = errors.New("visualization area must be positive")

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.W, "see-w", defaultConfig.W, "Width (m) of visualization area")
	flag.Float64Var(&defaultConfig.H, "see-h", defaultConfig.H, "Height (m) of visualization area")
	flag.StringVar(&defaultConfig.Output, "see-out", defaultConfig.Output, "Write visualization to the file instead of stdout")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewAdapter creates adapter from config, opening Output if set.
func (c *Config) NewAdapter() (*Adapter, error) {
	if c.W <= 0 || c.H <= 0 {
		return nil, fmt.Errorf("%w: %vx%v", ErrInvalidArea, c.W, c.H)
	}
	a := NewAdapter(c)
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return nil, err
		}
		a.Out = f
	}
	return a, nil
}

// MustNewAdapter creates the adapter and fails on error.
func (c *Config) MustNewAdapter() *Adapter {
	a, err := c.NewAdapter()
	if err != nil {
		log.Fatalln(err)
	}
	return a
}
