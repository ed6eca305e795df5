//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"relay-hub/domain"
)

// EventSink is the outbound side of one live connection. Consume must
// never block the caller: a full queue drops the event and reports it.
type EventSink interface {
	Consume(ctx context.Context, e domain.Outbound) error
}

// Presence maps an authenticated identity to its live sink.
// Register is last-writer-wins and returns a generation number;
// Unregister only removes the entry while the generation still matches,
// so an old session's teardown can never evict a newer session's entry.
type Presence interface {
	Register(identity string, sink EventSink) uint64
	Lookup(identity string) (EventSink, bool)
	Unregister(identity string, generation uint64) bool
}

// Groups tracks group membership by identity, never by connection.
// A session leaves the groups it joined when it tears down.
type Groups interface {
	Join(groupID, identity string)
	Leave(groupID, identity string)
	Members(groupID string) []string
}

// Recorder accepts documents for best-effort persistence. Both calls are
// fire-and-forget: they never block and never surface storage failures
// to the routing path.
type Recorder interface {
	RecordMessage(doc domain.MessageDocument)
	RecordCall(doc domain.CallDocument)
}

// Origin is the authenticated source of an inbound event. The router
// reports joined groups back through it so the owning session can leave
// them on teardown.
type Origin interface {
	Identity() string
	RememberGroup(groupID string)
}

// Router interprets one inbound event in the context of one session.
type Router interface {
	Dispatch(ctx context.Context, origin Origin, ev domain.Inbound)
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
