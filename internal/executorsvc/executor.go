// Package executorsvc implements the demo-machine side of Code Monkey: a
// TCP server that accepts a single live controller connection, dispatches
// Execute messages to an ActionBackend in order, and acks the result.
package executorsvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/codemonkey-cli/codemonkey/internal/backend"
	"github.com/codemonkey-cli/codemonkey/internal/exitcode"
	"github.com/codemonkey-cli/codemonkey/internal/wire"
)

const (
	idleReadTimeout = 60 * time.Second
	maxIdleTimeouts = 10 // 10 * 60s ≈ 10 minutes of silence before the agent gives up
	keepAlivePeriod = 30 * time.Second
)

// errProtocolViolation marks a message the protocol doesn't allow inbound
// (an Ack/Pong, or any unrecognized tag) — spec sections 4.7 and 7.3 both
// require closing the connection rather than replying to one of these.
var errProtocolViolation = errors.New("protocol violation: unexpected message kind")

// Executor is the Go-side "Agent": bind, accept, dispatch.
type Executor struct {
	backend backend.ActionBackend
	port    uint16
	logger  *slog.Logger

	// gate enforces the single-connection-at-a-time contract. It is a
	// 1-buffered channel used as a non-blocking mutex, adapted from the
	// corpus's MutexMap key-lock idiom but in-memory only — there is no
	// persisted lock file because the executor has no state to protect
	// across restarts, only a live TCP connection within one process.
	gate chan struct{}
}

// New builds an Executor bound to the given port, dispatching through b.
func New(b backend.ActionBackend, port uint16, logger *slog.Logger) *Executor {
	gate := make(chan struct{}, 1)
	gate <- struct{}{}
	return &Executor{backend: b, port: port, logger: logger, gate: gate}
}

// Run binds the listener and serves forever, until ctx is cancelled or
// accept fails.
func (e *Executor) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", e.port))
	if err != nil {
		return exitcode.Bind(fmt.Errorf("listen on port %d: %w", e.port, err))
	}
	defer listener.Close()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	e.logger.Info("agent listening", "port", e.port)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				// Shutdown was requested (e.g. SIGTERM); not a failure.
				return nil
			}
			return exitcode.Protocol(fmt.Errorf("accept: %w", err))
		}
		connID := uuid.NewString()
		go e.serve(conn, connID)
	}
}

func (e *Executor) serve(conn net.Conn, connID string) {
	defer conn.Close()
	log := e.logger.With("conn", connID, "remote", conn.RemoteAddr().String())

	select {
	case <-e.gate:
		// Acquired: we are the single active connection.
	default:
		log.Warn("rejecting second connection while busy")
		e.rejectBusy(conn, log)
		return
	}
	defer func() { e.gate <- struct{}{} }()

	log.Info("client connected")
	if err := e.handleConnection(conn, log); err != nil && !errors.Is(err, io.EOF) {
		log.Warn("connection ended with error", "err", err)
	}
	log.Info("client disconnected, waiting for new connection")
}

// rejectBusy reads at most one message (if any arrives promptly), replies
// with a busy Ack, and closes — matching the spec's contract for a second
// concurrent client.
func (e *Executor) rejectBusy(conn net.Conn, log *slog.Logger) {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := wire.NewReader(conn)
	if _, err := reader.ReadMessage(); err != nil {
		log.Debug("no message from rejected client before close", "err", err)
	}
	if err := wire.WriteMessage(conn, wire.AckErr("busy")); err != nil {
		log.Debug("failed to write busy ack", "err", err)
	}
}

func (e *Executor) handleConnection(conn net.Conn, log *slog.Logger) error {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
		tcpConn.SetKeepAlive(true)
		tcpConn.SetKeepAlivePeriod(keepAlivePeriod)
	}

	reader := wire.NewReader(conn)
	idleTimeouts := 0

	for {
		conn.SetReadDeadline(time.Now().Add(idleReadTimeout))
		msg, err := reader.ReadMessage()
		if err != nil {
			if isTimeout(err) {
				idleTimeouts++
				if idleTimeouts >= maxIdleTimeouts {
					log.Warn("client idle too long, closing connection")
					return nil
				}
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		idleTimeouts = 0

		response, err := e.handleMessage(msg, log)
		if err != nil {
			// Protocol violation: close the connection without replying,
			// per spec sections 4.7 and 7.3.
			return err
		}
		if err := wire.WriteMessage(conn, response); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
}

func (e *Executor) handleMessage(msg wire.Message, log *slog.Logger) (wire.Message, error) {
	switch msg.Kind {
	case wire.KindExecute:
		log.Debug("executing block", "actions", len(msg.Actions))
		if err := e.backend.Execute(msg.Actions, msg.TypingSpeedMs, msg.TypingVariance); err != nil {
			log.Warn("action block failed", "err", err)
			return wire.AckErr(err.Error()), nil
		}
		return wire.AckOK(), nil
	case wire.KindPing:
		return wire.PongMessage(), nil
	default:
		log.Warn("protocol violation, closing connection", "kind", msg.Kind)
		return wire.Message{}, errProtocolViolation
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

