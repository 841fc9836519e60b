package direct

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/swerve.go/pkg/framework"
	"github.com/robotalks/swerve.go/pkg/l1"
	"github.com/robotalks/swerve.go/pkg/l1/msgs"
)

func TestStreamFraming(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	w, r := NewStreamReadWriter(a), NewStreamReadWriter(b)
	packets := [][]byte{[]byte("hello"), {}, make([]byte, 1000)}
	go func() {
		for _, pkt := range packets {
			w.WritePacket(pkt)
		}
	}()
	for _, expect := range packets {
		pkt, err := r.ReadPacket()
		require.NoError(t, err)
		require.Equal(t, len(expect), len(pkt))
		require.Equal(t, expect, pkt)
	}

	go a.Write([]byte{0xff, 0xff, 0xff, 0xff})
	_, err := r.ReadPacket()
	require.Error(t, err)
}

func TestUnsupportedSchemes(t *testing.T) {
	_, err := Listen("udp://127.0.0.1:0")
	require.Error(t, err)
	_, err = NewConnector("mqtt://localhost:1883")
	require.Error(t, err)
}

type eventCollector struct {
	lock   sync.Mutex
	events []*msgs.SwerveStatus
}

func (c *eventCollector) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		if m, ok := mctx.CurrentMessage().(*msgs.SwerveStatus); ok {
			mctx.MessageTaken()
			c.lock.Lock()
			c.events = append(c.events, m)
			c.lock.Unlock()
		}
	}))
	return nil
}

func (c *eventCollector) count() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.events)
}

func TestCommandsAndEvents(t *testing.T) {
	testCases := []struct {
		scheme string
		path   string
	}{
		{"tcp", ""},
		{"ws", "/swerve"},
	}
	for _, tc := range testCases {
		t.Run(tc.scheme, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			reg, err := Listen(tc.scheme + "://127.0.0.1:0" + tc.path)
			require.NoError(t, err)
			server := fx.NewLoop()
			server.Interval = 5 * time.Millisecond
			server.Add(reg)
			server.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
				cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
					if cmd, ok := mctx.CurrentMessage().(*l1.CommandMsg); ok {
						mctx.MessageTaken()
						switch cmd.Command.Msg().(type) {
						case *msgs.SwervePoseQuery:
							cmd.Command.Done(&msgs.SwervePose{X: 1, Y: 2})
						default:
							cmd.Command.Done(msgs.NewCommandErr(msgs.ErrUnsupportedCommand))
						}
					}
				}))
				return nil
			}))
			go server.Run(ctx)

			connector, err := NewConnector(tc.scheme + "://" + reg.Addr().String() + tc.path)
			require.NoError(t, err)

			infos, err := connector.Discover(ctx)
			require.NoError(t, err)
			require.Len(t, infos, 1)
			require.Equal(t, DirectType, infos[0].Ref.Type)

			conn, err := connector.Connect(ctx, infos[0].Ref)
			require.NoError(t, err)
			collector := &eventCollector{}
			client := fx.NewLoop()
			client.Interval = 5 * time.Millisecond
			client.Add(conn.(fx.LoopAdder))
			client.AddController(fx.PrLvControl, collector)
			go client.Run(ctx)

			res := <-conn.DoCommand(&msgs.SwervePoseQuery{}).ResultChan()
			require.NoError(t, res.Err)
			pose, ok := res.Msg.(*msgs.SwervePose)
			require.True(t, ok)
			require.Equal(t, 1.0, pose.X)
			require.Equal(t, 2.0, pose.Y)

			res = <-conn.DoCommand(&msgs.SwerveLock{}).ResultChan()
			require.Error(t, res.Err)
			require.Contains(t, res.Err.Error(), msgs.ErrUnsupportedCommand.Error())

			require.Eventually(t, func() bool {
				reg.SendEvent(ctx, &msgs.SwerveStatus{Driving: true})
				return collector.count() > 0
			}, 5*time.Second, 20*time.Millisecond)
		})
	}
}
