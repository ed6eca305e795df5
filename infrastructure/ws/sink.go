// Package ws is the live-connection surface of the hub: the HTTP
// upgrade handler, the per-connection session and its bounded outbound
// queue.
package ws

import (
	"context"

	"relay-hub/domain"
	"relay-hub/errors"
)

// Sink is the bounded outbound queue of one session. Consume never
// blocks: when the queue is full the event is dropped and the caller
// decides what to count.
type Sink struct {
	events chan domain.Outbound
}

func NewSink(bufferSize int) *Sink {
	return &Sink{events: make(chan domain.Outbound, bufferSize)}
}

func (s *Sink) Consume(_ context.Context, e domain.Outbound) error {
	select {
	case s.events <- e:
		return nil
	default:
		return errors.ErrSendQueueFull
	}
}

// Events is drained by the session's write pump.
func (s *Sink) Events() <-chan domain.Outbound {
	return s.events
}
