package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"idverify/pkg/requestcontext"
)

// Recorder accepts events from request handling and hands them to the worker
// over a buffered channel. Record never blocks the request path: when the
// buffer is full the event is dropped and counted in the log.
type Recorder struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewRecorder(buffer int, logger *slog.Logger) *Recorder {
	return &Recorder{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Record enriches the event from the request context and queues it. A nil
// Recorder is a no-op so auditing stays optional in tests.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if r == nil {
		return
	}

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = event.Action.Category()
	}
	if event.Actor == "" {
		event.Actor = requestcontext.Actor(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}

	select {
	case r.inbox <- event:
	default:
		r.logger.WarnContext(ctx, "audit event dropped, buffer full",
			"action", event.Action,
			"request_id", event.RequestID)
	}
}

// Events exposes the queue to the worker.
func (r *Recorder) Events() <-chan Event {
	return r.inbox
}
