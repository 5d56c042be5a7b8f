// Package wire implements the length-prefixed JSON message protocol spoken
// between the controller and the executor over a single persistent TCP
// connection.
package wire

import "github.com/codemonkey-cli/codemonkey/internal/script"

// MessageKind discriminates the Message sum type via its "type" field.
type MessageKind string

const (
	KindExecute MessageKind = "execute"
	KindAck     MessageKind = "ack"
	KindPing    MessageKind = "ping"
	KindPong    MessageKind = "pong"
)

// AckStatus reports whether an executed block succeeded.
type AckStatus string

const (
	AckOk    AckStatus = "ok"
	AckError AckStatus = "error"
)

// Message is the wire envelope. Exactly one group of fields is meaningful
// per Kind, mirroring Directive's own tagged-union shape.
type Message struct {
	Kind MessageKind `json:"type"`

	// Execute
	Actions         []script.Directive `json:"actions,omitempty"`
	TypingSpeedMs   uint64              `json:"typing_speed,omitempty"`
	TypingVariance  uint64              `json:"typing_variance,omitempty"`

	// Ack
	Status        AckStatus `json:"status,omitempty"`
	AckMessage    *string   `json:"message,omitempty"`
}

// Execute builds an Execute message for a single action block.
func Execute(actions []script.Directive, typingSpeedMs, typingVarianceMs uint64) Message {
	return Message{
		Kind:           KindExecute,
		Actions:        actions,
		TypingSpeedMs:  typingSpeedMs,
		TypingVariance: typingVarianceMs,
	}
}

// AckOK builds a successful acknowledgement.
func AckOK() Message {
	return Message{Kind: KindAck, Status: AckOk}
}

// AckErr builds a failed acknowledgement carrying a human-readable cause.
func AckErr(message string) Message {
	return Message{Kind: KindAck, Status: AckError, AckMessage: &message}
}

// Ping and Pong are liveness probes; the executor never sends Ping itself
// in the current protocol, but the type exists for forward compatibility
// with a future keepalive handshake.
func PingMessage() Message { return Message{Kind: KindPing} }
func PongMessage() Message { return Message{Kind: KindPong} }
