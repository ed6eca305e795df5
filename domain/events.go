// Package domain contains the core concepts of the relay hub:
// wire events exchanged over a live connection, the documents derived
// from them, and the rules for interpreting signaling payloads.
package domain

import (
	"encoding/json"
	"fmt"

	"relay-hub/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Inbound is the closed set of events a client may send over its
// connection. Decoding is strict: an unknown discriminator or a missing
// required field rejects the whole frame.
type Inbound interface {
	inbound()
}

// Join is a legacy rebinding message. The connection is already bound to
// its authenticated identity, so it carries no effect.
type Join struct {
	UserID string `json:"user_id"`
}

type JoinGroup struct {
	UserID  string `json:"user_id" validate:"required"`
	GroupID string `json:"group_id" validate:"required"`
}

type LeaveGroup struct {
	UserID  string `json:"user_id" validate:"required"`
	GroupID string `json:"group_id" validate:"required"`
}

type Chat struct {
	TargetID    string   `json:"target_id" validate:"required"`
	IsGroup     bool     `json:"is_group"`
	Content     *string  `json:"content,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
	Kind        string   `json:"kind" validate:"required"`
}

type Signal struct {
	TargetID string          `json:"target_id" validate:"required"`
	Payload  json.RawMessage `json:"payload" validate:"required"`
}

func (Join) inbound()       {}
func (JoinGroup) inbound()  {}
func (LeaveGroup) inbound() {}
func (Chat) inbound()       {}
func (Signal) inbound()     {}

// ParseInbound decodes one text frame into its typed event.
// The caller is expected to drop the frame on error and keep the
// connection open.
func ParseInbound(data []byte) (Inbound, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch envelope.Type {
	case "join":
		return decodeInto[Join](data)
	case "join_group":
		return decodeInto[JoinGroup](data)
	case "leave_group":
		return decodeInto[LeaveGroup](data)
	case "chat":
		return decodeInto[Chat](data)
	case "signal":
		return decodeInto[Signal](data)
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEventType, envelope.Type)
	}
}

func decodeInto[T Inbound](data []byte) (Inbound, error) {
	var ev T
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if err := validate.Struct(ev); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	return ev, nil
}

// Outbound is an event pushed to a recipient's send queue.
// Both variants serialize to a tagged JSON object.
type Outbound interface {
	outbound()
}

// ChatEvent is the delivered form of a chat message. The sender identity
// and the timestamp are stamped by the router, never taken from the wire.
type ChatEvent struct {
	Type        string   `json:"type"`
	SenderID    string   `json:"sender_id"`
	TargetID    string   `json:"target_id"`
	IsGroup     bool     `json:"is_group"`
	Content     *string  `json:"content,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
	Kind        string   `json:"kind"`
	Timestamp   int64    `json:"timestamp"`
}

// SignalEvent wraps a raw signaling payload with the authenticated sender
// attached. The payload itself is forwarded untouched.
type SignalEvent struct {
	Type     string          `json:"type"`
	SenderID string          `json:"sender_id"`
	Payload  json.RawMessage `json:"payload"`
}

func (ChatEvent) outbound()   {}
func (SignalEvent) outbound() {}

func NewChatEvent(sender string, chat Chat, content *string, timestamp int64) ChatEvent {
	return ChatEvent{
		Type:        "chat",
		SenderID:    sender,
		TargetID:    chat.TargetID,
		IsGroup:     chat.IsGroup,
		Content:     content,
		Attachments: chat.Attachments,
		Kind:        chat.Kind,
		Timestamp:   timestamp,
	}
}

func NewSignalEvent(sender string, payload json.RawMessage) SignalEvent {
	return SignalEvent{Type: "signal", SenderID: sender, Payload: payload}
}
