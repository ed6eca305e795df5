// Package storage decouples routing from durability. The Recorder
// accepts documents on a bounded queue and a single worker drains them
// into the repositories and the search index, so a slow disk can never
// stall a delivery path.
package storage

import (
	"context"
	"log/slog"

	"relay-hub/domain"
	"relay-hub/observability"
	"relay-hub/repositories"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"
)

type record struct {
	message *domain.MessageDocument
	call    *domain.CallDocument
}

type Recorder struct {
	log      *slog.Logger
	messages repositories.IMessageRepository
	calls    repositories.ICallRepository
	index    repositories.ISearchIndex
	monitor  *observability.Monitor
	queue    chan record
}

// NewRecorder wires the persistence worker. index may be nil when
// full-text search is disabled.
func NewRecorder(
	log *slog.Logger,
	messages repositories.IMessageRepository,
	calls repositories.ICallRepository,
	index repositories.ISearchIndex,
	monitor *observability.Monitor,
	bufferSize int,
) *Recorder {
	return &Recorder{
		log:      log,
		messages: messages,
		calls:    calls,
		index:    index,
		monitor:  monitor,
		queue:    make(chan record, bufferSize),
	}
}

// RecordMessage enqueues a message document for persistence. It never
// blocks: when the queue is full the document is dropped and counted.
func (r *Recorder) RecordMessage(doc domain.MessageDocument) {
	doc.ID = uuid.New()
	r.enqueue(record{message: &doc})
}

// RecordCall enqueues a call document for persistence, same contract as
// RecordMessage.
func (r *Recorder) RecordCall(doc domain.CallDocument) {
	doc.ID = uuid.New()
	r.enqueue(record{call: &doc})
}

func (r *Recorder) enqueue(rec record) {
	select {
	case r.queue <- rec:
	default:
		r.monitor.RecorderDrops.Add(1)
		r.log.Warn("Recorder queue full, dropping document")
	}
}

// Run drains the queue until the context is canceled, then flushes
// whatever is already enqueued before returning.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			for {
				select {
				case rec := <-r.queue:
					r.persist(rec)
				default:
					return nil
				}
			}
		case rec := <-r.queue:
			r.persist(rec)
		}
	}
}

func (r *Recorder) persist(rec record) {
	switch {
	case rec.message != nil:
		doc := *rec.message
		doc.Lang = detectLang(doc.Content)
		if err := r.messages.Store(doc); err != nil {
			r.monitor.PersistFailures.Add(1)
			r.log.Error("Failed to persist message", "id", doc.ID, "error", err)
		}
		if r.index != nil {
			if err := r.index.IndexMessage(doc); err != nil {
				r.monitor.PersistFailures.Add(1)
				r.log.Warn("Failed to index message", "id", doc.ID, "error", err)
			}
		}
	case rec.call != nil:
		if err := r.calls.Store(*rec.call); err != nil {
			r.monitor.PersistFailures.Add(1)
			r.log.Error("Failed to persist call", "id", rec.call.ID, "error", err)
		}
	}
}

// detectLang tags the document with an ISO 639-3 code when the content
// is long enough for detection to be trustworthy.
func detectLang(content *string) string {
	if content == nil || *content == "" {
		return ""
	}
	info := whatlanggo.Detect(*content)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6393()
}
