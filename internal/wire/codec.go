package wire

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
)

// MaxFrameBytes bounds a single message frame. An Execute message embeds a
// whole action block's directives, but nothing a
// presenter writes by hand approaches this; it exists to keep a malformed
// peer from making either side allocate unboundedly.
const MaxFrameBytes = 16 * 1024 * 1024

// EncodeMessage serializes a Message into a 4-byte big-endian length
// prefix followed by its JSON encoding.
func EncodeMessage(msg Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(payload)))
	copy(buf[4:], payload)
	return buf, nil
}

// DecodeMessage attempts to decode one frame from the front of buf. It
// returns (nil, 0, nil) when buf does not yet hold a complete frame, so
// callers can keep reading and retry — this is the split-read case a TCP
// stream routinely produces.
func DecodeMessage(buf []byte) (*Message, int, error) {
	if len(buf) < 4 {
		return nil, 0, nil
	}

	length := binary.BigEndian.Uint32(buf[:4])
	if length > MaxFrameBytes {
		return nil, 0, fmt.Errorf("frame too large: %d bytes", length)
	}

	total := 4 + int(length)
	if len(buf) < total {
		return nil, 0, nil
	}

	var msg Message
	if err := json.Unmarshal(buf[4:total], &msg); err != nil {
		return nil, 0, fmt.Errorf("unmarshal message: %w", err)
	}
	return &msg, total, nil
}

// WriteMessage writes a single framed message to conn, guarding against
// short writes.
func WriteMessage(w io.Writer, msg Message) error {
	data, err := EncodeMessage(msg)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Reader incrementally decodes messages from a net.Conn, buffering partial
// frames across Read calls.
type Reader struct {
	conn    net.Conn
	pending []byte
	buf     []byte
}

// NewReader wraps conn for framed message reads.
func NewReader(conn net.Conn) *Reader {
	return &Reader{conn: conn, buf: make([]byte, 65536)}
}

// ReadMessage blocks until one complete message has been read, or returns
// an error (including io.EOF when the peer closed the connection cleanly
// between frames).
func (r *Reader) ReadMessage() (Message, error) {
	for {
		if msg, consumed, err := DecodeMessage(r.pending); err != nil {
			return Message{}, err
		} else if msg != nil {
			r.pending = append([]byte(nil), r.pending[consumed:]...)
			return *msg, nil
		}

		n, err := r.conn.Read(r.buf)
		if n > 0 {
			r.pending = append(r.pending, r.buf[:n]...)
		}
		if err != nil {
			if n == 0 {
				return Message{}, err
			}
			// Try to decode what we have; if it still isn't a whole
			// frame, surface err now.
			if msg, consumed, derr := DecodeMessage(r.pending); derr == nil && msg != nil {
				r.pending = append([]byte(nil), r.pending[consumed:]...)
				return *msg, nil
			}
			return Message{}, err
		}
	}
}
