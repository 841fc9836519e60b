package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testMsg struct {
	val int
}

func (m *testMsg) NewMessage() Message { return &testMsg{} }

func TestStepRunsByPriority(t *testing.T) {
	var order []string
	record := func(name string) Controller {
		return ControlFunc(func(cc ControlContext) error {
			order = append(order, name)
			return nil
		})
	}
	l := NewLoop()
	l.AddController(PrLvPostProc, record("post"))
	l.AddController(PrLvAcuate, record("acuate"))
	l.AddController(PrLvSense, record("sense"))
	l.AddController(PrLvControl, record("control1"), record("control2"))
	l.PreRunAt(PrLvControl, record("pre"))
	l.PostRunAt(PrLvControl, record("postrun"))

	l.Step(context.Background(), time.Now())
	require.Equal(t, []string{"sense", "pre", "control1", "control2", "postrun", "acuate", "post"}, order)

	order = nil
	l.Step(context.Background(), time.Now())
	require.Equal(t, []string{"sense", "control1", "control2", "acuate", "post"}, order, "hooks are one-shot")
}

func TestStepTime(t *testing.T) {
	now := time.Unix(1000, 0)
	var seen time.Time
	var level int
	l := NewLoop().AddController(PrLvSense, ControlFunc(func(cc ControlContext) error {
		seen, level = cc.Time(), cc.PriorityLevel()
		require.Equal(t, cc, CtlCtxFrom(cc.Context()))
		return errors.New("logged and ignored")
	}))
	l.Step(context.Background(), now)
	require.Equal(t, now, seen)
	require.Equal(t, PrLvSense, level)
}

func TestMessages(t *testing.T) {
	var got []int
	l := NewLoop()
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			m := mctx.CurrentMessage().(*testMsg)
			if m.val%2 == 0 {
				mctx.MessageTaken()
				got = append(got, m.val)
			}
			if m.val == 4 {
				mctx.AddMessages(&testMsg{val: 100})
			}
		}))
		return nil
	}))
	var left []int
	l.AddController(PrLvIdle, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			left = append(left, mctx.CurrentMessage().(*testMsg).val)
		}))
		return nil
	}))

	for i := 1; i <= 5; i++ {
		l.PostMessage(&testMsg{val: i})
	}
	l.Step(context.Background(), time.Now())
	require.Equal(t, []int{2, 4}, got)
	require.Equal(t, []int{1, 3, 5, 100}, left)

	got, left = nil, nil
	l.Step(context.Background(), time.Now())
	require.Empty(t, got, "messages live for one iteration")
	require.Empty(t, left)
}

func TestStopProcessing(t *testing.T) {
	var seen, left []int
	l := NewLoop()
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			m := mctx.CurrentMessage().(*testMsg)
			seen = append(seen, m.val)
			mctx.MessageTaken()
			if m.val == 2 {
				mctx.StopProcessing()
			}
		}))
		return nil
	}))
	l.AddController(PrLvLow, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mctx MessageProcessingContext) {
			left = append(left, mctx.CurrentMessage().(*testMsg).val)
		}))
		return nil
	}))
	for i := 1; i <= 4; i++ {
		l.PostMessage(&testMsg{val: i})
	}
	l.Step(context.Background(), time.Now())
	require.Equal(t, []int{1, 2}, seen)
	require.Equal(t, []int{3, 4}, left)
}

func TestPostRunFromController(t *testing.T) {
	var calls int
	l := NewLoop()
	l.AddController(PrLvNormal, ControlFunc(func(cc ControlContext) error {
		cc.PostRun(ControlFunc(func(ControlContext) error {
			calls++
			return nil
		}))
		return nil
	}))
	l.Step(context.Background(), time.Now())
	l.Step(context.Background(), time.Now())
	require.Equal(t, 2, calls)
}

type countRunner struct {
	started chan struct{}
}

func (r *countRunner) Run(ctx context.Context) error {
	close(r.started)
	<-ctx.Done()
	return ctx.Err()
}

func TestRunTicksAndTriggers(t *testing.T) {
	ticks := make(chan struct{}, 16)
	runner := &countRunner{started: make(chan struct{})}
	l := NewLoop()
	l.Interval = time.Hour
	l.AddRunnable(runner)
	l.AddController(PrLvNormal, ControlFunc(func(cc ControlContext) error {
		select {
		case ticks <- struct{}{}:
		default:
		}
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	<-runner.started
	l.TriggerNext()
	select {
	case <-ticks:
	case <-time.After(5 * time.Second):
		t.Fatal("TriggerNext didn't run an iteration")
	}
	cancel()
	require.Equal(t, context.Canceled, <-done)
}

func TestAggregatedError(t *testing.T) {
	var errs AggregatedError
	require.NoError(t, errs.Add(nil, nil).Aggregate())

	e1, e2 := errors.New("e1"), errors.New("e2")
	errs.Add(e1)
	require.Equal(t, "e1", errs.Aggregate().Error())
	errs.Add(nil, e2)
	err := errs.Aggregate()
	require.Equal(t, "Multiple errors:\ne1\ne2", err.Error())
	require.True(t, errors.Is(err, e1))
	require.True(t, errors.Is(err, e2))
}

func TestRunnerWait(t *testing.T) {
	failure := errors.New("failed")
	r := NewRunner()
	r.Go(RunnableFunc(func(context.Context) error { return failure }),
		RunnableFunc(func(context.Context) error { return context.Canceled }),
		NamedRun("ok", RunnableFunc(func(context.Context) error { return nil })))
	err := r.Wait()
	require.True(t, errors.Is(err, failure))
}

func TestRunWithContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	var cancelled bool
	done := make(chan error, 1)
	go func() {
		done <- RunWithContextCancel(ctx, func() {
			cancelled = true
			close(release)
		}, func() error {
			<-release
			return nil
		})
	}()
	cancel()
	require.Equal(t, context.Canceled, <-done)
	require.True(t, cancelled)

	require.Equal(t, errors.ErrUnsupported, RunWithContext(context.Background(), func() error {
		return errors.ErrUnsupported
	}))
}
