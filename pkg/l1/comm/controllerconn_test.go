package comm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/swerve.go/pkg/l1/msgs"
)

type packetRecorder struct {
	packets [][]byte
	err     error
}

func (r *packetRecorder) ReadPacket() ([]byte, error) { return nil, errors.New("not readable") }

func (r *packetRecorder) WritePacket(pkt []byte) error {
	if r.err != nil {
		return r.err
	}
	r.packets = append(r.packets, pkt)
	return nil
}

func newConn() (*ControllerConn, *packetRecorder) {
	rec := &packetRecorder{}
	conn := &ControllerConn{}
	conn.Init(rec)
	return conn, rec
}

func TestDoCommandSequence(t *testing.T) {
	conn, rec := newConn()
	conn.DoCommand(&msgs.SwervePoseQuery{})
	conn.DoCommand(&msgs.SwerveStop{})
	require.Len(t, rec.packets, 2)
	require.Equal(t, 2, conn.Pending())
	for n, pkt := range rec.packets {
		typed, err := msgs.DecodeTyped(pkt)
		require.NoError(t, err)
		require.Equal(t, uint32(n+1), typed.Sequence)
		require.True(t, typed.IsCommand())
	}
}

func TestCommandReplies(t *testing.T) {
	testCases := []struct {
		name  string
		reply msgs.SerializableMessage
		err   bool
	}{
		{"result", &msgs.SwervePose{X: 1}, false},
		{"error", msgs.NewCommandErr(errors.New("bad")), true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conn, _ := newConn()
			f := conn.DoCommand(&msgs.SwervePoseQuery{})
			reply := tc.reply
			typed, err := msgs.TypedFrom(reply)
			require.NoError(t, err)
			typed.Sequence = 1
			require.NoError(t, conn.handleTypedMsg(context.Background(), reply, typed))
			res, ok := <-f.ResultChan()
			require.True(t, ok)
			require.Equal(t, tc.err, res.Err != nil)
			require.Zero(t, conn.Pending())

			// replies of unknown sequences are dropped.
			require.NoError(t, conn.handleTypedMsg(context.Background(), reply, typed))
		})
	}
}

func TestCommandExpires(t *testing.T) {
	conn, _ := newConn()
	conn.Expiration = 10 * time.Millisecond
	f1 := conn.DoCommand(&msgs.SwervePoseQuery{})
	conn.Expiration = time.Hour
	f2 := conn.DoCommand(&msgs.SwervePoseQuery{})

	conn.expire(time.Now().Add(time.Second))
	res := <-f1.ResultChan()
	require.ErrorIs(t, res.Err, ErrCommandExpired)
	require.ErrorIs(t, res.Err, context.DeadlineExceeded)
	require.Equal(t, 1, conn.Pending())
	select {
	case <-f2.ResultChan():
		t.Fatal("command should not expire")
	default:
	}
}

func TestCommandSendFailure(t *testing.T) {
	conn, rec := newConn()
	rec.err = errors.New("link down")
	res := <-conn.DoCommand(&msgs.SwerveStop{}).ResultChan()
	require.ErrorIs(t, res.Err, rec.err)
	require.Zero(t, conn.Pending())
}
