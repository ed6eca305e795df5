package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// MessageDocument is the persisted form of a routed chat message.
// Lang is filled in by the recorder when the content allows detection.
type MessageDocument struct {
	ID          uuid.UUID `json:"id"`
	SenderID    string    `json:"sender_id"`
	TargetID    string    `json:"target_id"`
	IsGroup     bool      `json:"is_group"`
	Content     *string   `json:"content,omitempty"`
	Attachments []string  `json:"attachments,omitempty"`
	Kind        string    `json:"kind"`
	Lang        string    `json:"lang,omitempty"`
	Timestamp   int64     `json:"timestamp"`
}

// CallDocument is the persisted trace of a terminated call, derived
// opportunistically from a signaling event.
type CallDocument struct {
	ID        uuid.UUID       `json:"id"`
	CallerID  string          `json:"caller_id"`
	CalleeID  string          `json:"callee_id"`
	Status    string          `json:"status"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}
