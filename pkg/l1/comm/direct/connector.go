package direct

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"golang.org/x/net/websocket"

	"github.com/robotalks/swerve.go/pkg/l1"
	"github.com/robotalks/swerve.go/pkg/l1/comm"
)

// DirectType is the controller type reported by Discover, as the
// endpoint itself doesn't announce one.
const DirectType = "direct"

// DefaultDialTimeout is the default timeout to establish a connection.
const DefaultDialTimeout = 3 * time.Second

// Connector implements l1.Connector by dialing a single endpoint.
type Connector struct {
	URL         string
	DialTimeout time.Duration

	parsed *url.URL
}

// NewConnector creates a Connector for tcp:// or ws:// URL.
func NewConnector(endpointURL string) (*Connector, error) {
	u, err := url.Parse(endpointURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "tcp" && u.Scheme != "ws" {
		return nil, fmt.Errorf("unsupported direct scheme: %q", u.Scheme)
	}
	return &Connector{URL: endpointURL, DialTimeout: DefaultDialTimeout, parsed: u}, nil
}

// Discover implements Connector. It reports the endpoint as the only
// controller when it's reachable.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	rw, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	rw.Close()
	return []l1.ControllerInfo{{
		Ref:  l1.ControllerRef{Type: DirectType, ID: c.parsed.Host},
		Meta: l1.ControllerMeta{Description: c.URL},
	}}, nil
}

// Connect implements Connector. ref is not used, the endpoint serves
// exactly one controller.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	rw, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	conn := &comm.ControllerConn{}
	conn.Init(rw)
	return conn, nil
}

type packetReadWriteCloser interface {
	comm.PacketReadWriter
	Close() error
}

func (c *Connector) dial(ctx context.Context) (packetReadWriteCloser, error) {
	timeout := c.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	dialer := &net.Dialer{Timeout: timeout}
	if c.parsed.Scheme == "tcp" {
		conn, err := dialer.DialContext(ctx, "tcp", c.parsed.Host)
		if err != nil {
			return nil, err
		}
		return NewStreamReadWriter(conn), nil
	}
	config, err := websocket.NewConfig(c.URL, "http://"+c.parsed.Host)
	if err != nil {
		return nil, err
	}
	config.Dialer = dialer
	conn, err := websocket.DialConfig(config)
	if err != nil {
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return NewWebSocketReadWriter(conn), nil
}
