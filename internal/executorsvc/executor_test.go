package executorsvc

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/codemonkey-cli/codemonkey/internal/backend"
	"github.com/codemonkey-cli/codemonkey/internal/script"
	"github.com/codemonkey-cli/codemonkey/internal/wire"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startExecutor(t *testing.T, b backend.ActionBackend) (addr string, stop func()) {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr = listener.Addr().String()

	_, cancel := context.WithCancel(context.Background())
	exec := New(b, 0, discardLogger())
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go exec.serve(conn, "test")
		}
	}()

	return addr, func() {
		cancel()
		listener.Close()
	}
}

func TestExecutorHandlesExecute(t *testing.T) {
	rec := &backend.Recording{}
	addr, stop := startExecutor(t, rec)
	defer stop()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	msg := wire.Execute([]script.Directive{
		{Kind: script.KindFocus, FocusApp: "Terminal"},
		{Kind: script.KindRun},
	}, 40, 15)
	if err := wire.WriteMessage(conn, msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	resp, err := wire.NewReader(conn).ReadMessage()
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	if resp.Kind != wire.KindAck || resp.Status != wire.AckOk {
		t.Errorf("got %+v", resp)
	}
	if len(rec.Calls) != 1 || len(rec.Calls[0]) != 2 {
		t.Errorf("recorded calls = %+v", rec.Calls)
	}
}

func TestExecutorHandlesPing(t *testing.T) {
	addr, stop := startExecutor(t, &backend.Recording{})
	defer stop()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	if err := wire.WriteMessage(conn, wire.PingMessage()); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp, err := wire.NewReader(conn).ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Kind != wire.KindPong {
		t.Errorf("got %+v, want Pong", resp)
	}
}

func TestExecutorReturnsErrorAckOnBackendFailure(t *testing.T) {
	rec := &backend.Recording{FailWith: errors.New("mock failure")}
	addr, stop := startExecutor(t, rec)
	defer stop()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	msg := wire.Execute([]script.Directive{{Kind: script.KindRun}}, 40, 15)
	if err := wire.WriteMessage(conn, msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	resp, err := wire.NewReader(conn).ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if resp.Kind != wire.KindAck || resp.Status != wire.AckError {
		t.Fatalf("got %+v", resp)
	}
	if resp.AckMessage == nil {
		t.Fatal("expected an ack message describing the failure")
	}
}

func TestExecutorRejectsSecondConnectionWhileBusy(t *testing.T) {
	// Use a backend whose Execute blocks until we release it, so the
	// first connection stays "busy" long enough for a second to arrive.
	release := make(chan struct{})
	blocking := blockingBackend{release: release}

	addr, stop := startExecutor(t, blocking)
	defer stop()

	first, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer first.Close()
	first.SetDeadline(time.Now().Add(5 * time.Second))

	msg := wire.Execute([]script.Directive{{Kind: script.KindRun}}, 40, 15)
	if err := wire.WriteMessage(first, msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	time.Sleep(100 * time.Millisecond) // let the executor accept and gate the first conn

	second, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial second: %v", err)
	}
	defer second.Close()
	second.SetDeadline(time.Now().Add(5 * time.Second))

	resp, err := wire.NewReader(second).ReadMessage()
	if err != nil {
		t.Fatalf("read busy ack: %v", err)
	}
	if resp.Kind != wire.KindAck || resp.Status != wire.AckError || resp.AckMessage == nil || *resp.AckMessage != "busy" {
		t.Errorf("got %+v, want busy ack", resp)
	}

	close(release)
}

func TestExecutorClosesConnectionOnUnexpectedInboundAck(t *testing.T) {
	addr, stop := startExecutor(t, &backend.Recording{})
	defer stop()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	if err := wire.WriteMessage(conn, wire.AckOK()); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The executor must close the connection without replying — any read
	// after this point should observe EOF, not a response message.
	_, err = wire.NewReader(conn).ReadMessage()
	if err == nil {
		t.Fatal("expected connection to be closed after an unexpected Ack, got a response instead")
	}
}

type blockingBackend struct {
	release chan struct{}
}

func (b blockingBackend) Execute(actions []script.Directive, speed, variance uint64) error {
	<-b.release
	return nil
}
