package audit

import (
	"context"
	"log/slog"
)

// Worker drains the recorder queue and persists each event. When a relay is
// configured the event is also published to Kafka, best effort.
type Worker struct {
	store  Store
	relay  *Relay
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, relay *Relay, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, relay: relay, inbox: inbox, logger: logger}
}

// Run consumes events until ctx is cancelled. Persistence failures are logged
// and the worker keeps going; a flaky sink must not stop the trail entirely.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "append audit event",
					"error", err,
					"action", event.Action)
				continue
			}
			if w.relay != nil {
				if err := w.relay.Publish(ctx, event); err != nil {
					w.logger.WarnContext(ctx, "relay audit event",
						"error", err,
						"action", event.Action)
				}
			}
		}
	}
}
