// Package direct connects L2 components to an L1 controller without a
// broker, over TCP (tcp://host:port) or WebSocket (ws://host:port/path).
package direct

import (
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/net/websocket"
)

// MaxPacketSize limits the size of a single packet on a stream.
const MaxPacketSize = 1 << 20

// StreamReadWriter implements PacketReadWriter on a byte stream.
// Each packet is prefixed by its length as 4-byte little-endian.
type StreamReadWriter struct {
	io.ReadWriteCloser
}

// NewStreamReadWriter wraps a stream.
func NewStreamReadWriter(s io.ReadWriteCloser) *StreamReadWriter {
	return &StreamReadWriter{ReadWriteCloser: s}
}

// ReadPacket implements PacketReader.
func (p *StreamReadWriter) ReadPacket() ([]byte, error) {
	var size uint32
	if err := binary.Read(p.ReadWriteCloser, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxPacketSize {
		return nil, fmt.Errorf("packet too large: %d", size)
	}
	pkt := make([]byte, size)
	_, err := io.ReadFull(p.ReadWriteCloser, pkt)
	return pkt, err
}

// WritePacket implements PacketWriter. The length prefix and payload are
// written together so concurrent writers never interleave.
func (p *StreamReadWriter) WritePacket(pkt []byte) error {
	buf := make([]byte, 4+len(pkt))
	binary.LittleEndian.PutUint32(buf, uint32(len(pkt)))
	copy(buf[4:], pkt)
	_, err := p.Write(buf)
	return err
}

// WebSocketReadWriter implements PacketReadWriter with one binary
// WebSocket frame per packet.
type WebSocketReadWriter struct {
	Conn *websocket.Conn
}

// NewWebSocketReadWriter wraps websocket.Conn.
func NewWebSocketReadWriter(conn *websocket.Conn) *WebSocketReadWriter {
	return &WebSocketReadWriter{Conn: conn}
}

// ReadPacket implements PacketReader.
func (p *WebSocketReadWriter) ReadPacket() (pkt []byte, err error) {
	err = websocket.Message.Receive(p.Conn, &pkt)
	return
}

// WritePacket implements PacketWriter.
func (p *WebSocketReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send(p.Conn, pkt)
}

// Close implements io.Closer.
func (p *WebSocketReadWriter) Close() error {
	return p.Conn.Close()
}
