package direct

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/swerve.go/pkg/framework"
	"github.com/robotalks/swerve.go/pkg/l1/comm"
)

// Registrar accepts direct connections from L2 components. Commands from
// every connection are posted to the loop, events are sent to all
// connections.
type Registrar struct {
	URL string

	listener  net.Listener
	websocket bool
	path      string

	conns map[*comm.Registrar]struct{}
	lock  sync.Mutex
}

// Listen starts listening on listenURL (tcp://host:port or ws://host:port/path).
func Listen(listenURL string) (*Registrar, error) {
	u, err := url.Parse(listenURL)
	if err != nil {
		return nil, err
	}
	r := &Registrar{URL: listenURL, conns: make(map[*comm.Registrar]struct{})}
	switch u.Scheme {
	case "tcp":
	case "ws":
		r.websocket = true
		if r.path = u.Path; r.path == "" {
			r.path = "/"
		}
	default:
		return nil, fmt.Errorf("unsupported listen scheme: %q", u.Scheme)
	}
	if r.listener, err = net.Listen("tcp", u.Host); err != nil {
		return nil, err
	}
	glog.Infof("listening on %s", r.listener.Addr())
	return r, nil
}

// Addr returns the listening address.
func (r *Registrar) Addr() net.Addr {
	return r.listener.Addr()
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	r.lock.Lock()
	conns := make([]*comm.Registrar, 0, len(r.conns))
	for conn := range r.conns {
		conns = append(conns, conn)
	}
	r.lock.Unlock()
	var errs fx.AggregatedError
	for _, conn := range conns {
		errs.Add(conn.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(r)
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	if r.websocket {
		mux := http.NewServeMux()
		mux.Handle(r.path, websocket.Handler(func(conn *websocket.Conn) {
			conn.PayloadType = websocket.BinaryFrame
			r.serve(ctx, NewWebSocketReadWriter(conn))
		}))
		server := &http.Server{Handler: mux}
		return fx.RunWithContextCancel(ctx, func() { server.Close() }, func() error {
			if err := server.Serve(r.listener); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	return fx.RunWithContextCloser(ctx, r.listener, func() error {
		for {
			conn, err := r.listener.Accept()
			if err != nil {
				return err
			}
			go r.serve(ctx, NewStreamReadWriter(conn))
		}
	})
}

func (r *Registrar) serve(ctx context.Context, rw comm.PacketReadWriter) {
	conn := &comm.Registrar{}
	conn.Init(rw)
	r.lock.Lock()
	r.conns[conn] = struct{}{}
	r.lock.Unlock()
	glog.V(1).Info("connection accepted")

	err := fx.RunWithContextCloser(ctx, conn, func() error {
		return conn.Run(ctx)
	})

	r.lock.Lock()
	delete(r.conns, conn)
	r.lock.Unlock()
	glog.V(1).Infof("connection closed: %v", err)
}
