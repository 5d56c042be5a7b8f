// Package controller implements the presenter-laptop side of Code Monkey:
// a cursor over grouped blocks that dispatches Execute messages to a
// connected executor and reports back a StepResult per Enter press.
package controller

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/codemonkey-cli/codemonkey/internal/script"
	"github.com/codemonkey-cli/codemonkey/internal/wire"
)

const (
	connectTimeout = 5 * time.Second
	readTimeout    = 30 * time.Second
	writeTimeout   = 5 * time.Second
)

// StepKind discriminates the outcome of a single Step call.
type StepKind string

const (
	StepExecuted      StepKind = "executed"
	StepPaused        StepKind = "paused"
	StepNarrationOnly StepKind = "narration_only"
	StepFinished      StepKind = "finished"
	StepAgentError    StepKind = "agent_error"
	StepConnectionLost StepKind = "connection_lost"
)

// StepResult reports what happened during one Step call.
type StepResult struct {
	Kind         StepKind
	PauseSeconds *uint64 // set when Kind == StepPaused
	ErrorMessage string  // set when Kind == StepAgentError
}

// Controller walks the block list, dispatching one Execute per Action
// block and advancing its cursor only on success. A single field owns the
// live connection; nil means disconnected.
type Controller struct {
	blocks      []script.Block
	current     int
	frontMatter script.FrontMatter
	conn        net.Conn
	agentAddr   string

	connectGroup singleflight.Group
}

// New builds a Controller from an already-parsed script.
func New(s script.Script, agentAddr string) *Controller {
	return &Controller{
		blocks:      script.GroupIntoBlocks(s),
		frontMatter: s.FrontMatter,
		agentAddr:   agentAddr,
	}
}

// Connect dials the executor. Concurrent calls (e.g. a TUI retry timer
// racing a manual reconnect keypress) collapse into a single dial via
// singleflight so the executor never sees two competing connection
// attempts from the same controller process.
func (c *Controller) Connect(ctx context.Context) error {
	_, err, _ := c.connectGroup.Do("connect", func() (any, error) {
		dialer := net.Dialer{Timeout: connectTimeout}
		conn, err := dialer.DialContext(ctx, "tcp", c.agentAddr)
		if err != nil {
			return nil, fmt.Errorf("connect to agent at %s: %w", c.agentAddr, err)
		}
		c.conn = conn
		return nil, nil
	})
	return err
}

// IsConnected reports whether the controller currently holds a live
// connection.
func (c *Controller) IsConnected() bool {
	return c.conn != nil
}

// CurrentBlock returns the block the cursor currently points at, or nil at
// the end of the presentation.
func (c *Controller) CurrentBlock() *script.Block {
	if c.current < 0 || c.current >= len(c.blocks) {
		return nil
	}
	return &c.blocks[c.current]
}

// Progress reports the cursor position and total block count.
func (c *Controller) Progress() (int, int) {
	return c.current, len(c.blocks)
}

// Reload replaces the block list from a freshly re-parsed script, clamping
// the cursor so a shrunk script can't leave it out of range. Used by
// `present --watch` to pick up edits without losing the presenter's place.
func (c *Controller) Reload(s script.Script) {
	c.blocks = script.GroupIntoBlocks(s)
	c.frontMatter = s.FrontMatter
	if c.current > len(c.blocks) {
		c.current = len(c.blocks)
	}
}

// GoBack moves the cursor one block earlier, clamped at zero.
func (c *Controller) GoBack() {
	if c.current > 0 {
		c.current--
	}
}

// Skip advances the cursor without dispatching anything, for when the
// executor is unresponsive and the presenter wants to move on without
// retrying (see SPEC_FULL.md's supplemented features).
func (c *Controller) Skip() {
	if c.current < len(c.blocks) {
		c.current++
	}
}

// Step advances the presentation by one block. Narration-only and pause
// blocks consume no network round trip; action blocks send one Execute
// and wait for an Ack, advancing the cursor only when it reports success.
func (c *Controller) Step() (StepResult, error) {
	block := c.CurrentBlock()
	if block == nil {
		return StepResult{Kind: StepFinished}, nil
	}

	switch block.Kind {
	case script.BlockNarrationOnly:
		c.current++
		return StepResult{Kind: StepNarrationOnly}, nil

	case script.BlockPause:
		c.current++
		return StepResult{Kind: StepPaused, PauseSeconds: block.PauseSeconds}, nil

	case script.BlockAction:
		if len(block.Actions) == 0 {
			c.current++
			return StepResult{Kind: StepExecuted}, nil
		}

		msg := wire.Execute(block.Actions, c.frontMatter.TypingSpeedMs, c.frontMatter.TypingVarianceMs)
		resp, err := c.sendAndReceive(msg)
		if err != nil {
			c.conn = nil
			return StepResult{Kind: StepConnectionLost}, nil
		}

		switch {
		case resp.Kind == wire.KindAck && resp.Status == wire.AckOk:
			c.current++
			return StepResult{Kind: StepExecuted}, nil
		case resp.Kind == wire.KindAck && resp.Status == wire.AckError:
			message := "unknown agent error"
			if resp.AckMessage != nil {
				message = *resp.AckMessage
			}
			return StepResult{Kind: StepAgentError, ErrorMessage: message}, nil
		default:
			return StepResult{Kind: StepAgentError, ErrorMessage: "unexpected response from agent"}, nil
		}

	default:
		return StepResult{}, fmt.Errorf("unknown block kind %q", block.Kind)
	}
}

func (c *Controller) sendAndReceive(msg wire.Message) (wire.Message, error) {
	if c.conn == nil {
		return wire.Message{}, errors.New("not connected")
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := wire.WriteMessage(c.conn, msg); err != nil {
		return wire.Message{}, err
	}

	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	return wire.NewReader(c.conn).ReadMessage()
}
