package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrUnknownEventType = fmt.Errorf("unknown event type")
	ErrMissingToken     = fmt.Errorf("missing token")
	ErrInvalidToken     = fmt.Errorf("invalid token")
	ErrSendQueueFull    = fmt.Errorf("send queue full")
	ErrEmptyQuery       = fmt.Errorf("empty search query")
	ErrEmptyWords       = fmt.Errorf("no words have been found")
)
