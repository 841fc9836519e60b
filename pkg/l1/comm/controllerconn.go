package comm

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	fx "github.com/robotalks/swerve.go/pkg/framework"
	"github.com/robotalks/swerve.go/pkg/l1"
	"github.com/robotalks/swerve.go/pkg/l1/msgs"
)

// ErrCommandExpired is the result of a command not replied in time.
var ErrCommandExpired = fmt.Errorf("command expired: %w", context.DeadlineExceeded)

// ControllerConn provides base implementation for l1.ControllerConn using Pipe.
type ControllerConn struct {
	Expiration time.Duration

	pipe    Pipe
	seq     uint32
	pending []*commandFuture // ordered by expireAt.
	lock    sync.Mutex
}

// DefaultCommandExpiration is the default expiration expecting a result.
const DefaultCommandExpiration = 1 * time.Second

// Init initializes ControllerConn with defaults.
func (c *ControllerConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
}

// DoCommand implements ControllerConn.
func (c *ControllerConn) DoCommand(msg fx.Message) l1.CommandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.seq++
	if c.seq == 0 {
		c.seq++
	}
	f := &commandFuture{
		seq:      c.seq,
		expireAt: time.Now().Add(c.Expiration),
		result:   make(chan l1.Result, 1),
	}
	if err := c.pipe.SendCommandMsg(msg, f.seq); err != nil {
		f.done(l1.Result{Err: err})
		return f
	}
	c.pending = append(c.pending, f)
	return f
}

// Pending returns the number of commands waiting for replies.
func (c *ControllerConn) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.pending)
}

// AddToLoop implements LoopAdder.
func (c *ControllerConn) AddToLoop(l *fx.Loop) {
	l.Add(&c.pipe)
	l.AddController(fx.PrLvIdle, fx.ControlFunc(c.purgeExpired))
}

func (c *ControllerConn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		loopCtl := fx.LoopCtlFrom(ctx)
		loopCtl.PostMessage(msg)
		loopCtl.TriggerNext()
		return nil
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	index := slices.IndexFunc(c.pending, func(f *commandFuture) bool { return f.seq == typed.Sequence })
	if index < 0 {
		return nil
	}
	f := c.pending[index]
	c.pending = slices.Delete(c.pending, index, index+1)
	result := l1.Result{Msg: msg}
	if cmdErr, ok := msg.(*msgs.CommandErr); ok {
		result.Err = cmdErr
	}
	f.done(result)
	return nil
}

func (c *ControllerConn) purgeExpired(cc fx.ControlContext) error {
	c.expire(time.Now())
	return nil
}

func (c *ControllerConn) expire(now time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	n := 0
	for ; n < len(c.pending) && !c.pending[n].expireAt.After(now); n++ {
		c.pending[n].done(l1.Result{Err: ErrCommandExpired})
	}
	c.pending = slices.Delete(c.pending, 0, n)
}

type commandFuture struct {
	seq      uint32
	expireAt time.Time
	result   chan l1.Result
}

func (c *commandFuture) done(res l1.Result) {
	c.result <- res
	close(c.result)
}

func (c *commandFuture) ResultChan() <-chan l1.Result {
	return c.result
}
