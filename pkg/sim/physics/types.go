// Package physics holds what simulated hardware shares: when it runs in the
// loop and the context it advances in.
package physics

import (
	"context"
	"time"

	fx "github.com/robotalks/swerve.go/pkg/framework"
)

// PrLvSimulate advances simulated hardware before sensors read it.
const PrLvSimulate = fx.PrLvSense - 1

// Context provides the simulation context. A loop ControlContext is one.
type Context interface {
	fx.TimeSource
	Context() context.Context
}

// At creates a Context at the given time, to advance a simulation
// outside a loop.
func At(ctx context.Context, now time.Time) Context {
	return instant{ctx: ctx, now: now}
}

type instant struct {
	ctx context.Context
	now time.Time
}

func (i instant) Time() time.Time          { return i.now }
func (i instant) Context() context.Context { return i.ctx }
