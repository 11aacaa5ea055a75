package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idverify/pkg/requestcontext"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestActionCategory(t *testing.T) {
	assert.Equal(t, CategoryCompliance, ActionVerificationPerformed.Category())
	assert.Equal(t, CategorySecurity, ActionAuthFailed.Category())
	assert.Equal(t, CategoryOperations, ActionSessionCreated.Category())
	assert.Equal(t, CategoryOperations, Action("something_new").Category())
}

func TestRecorderEnrichesFromContext(t *testing.T) {
	now := time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithRequestID(ctx, "req-1")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.7", "test-agent")
	ctx = requestcontext.WithActor(ctx, "dashboard")

	recorder := NewRecorder(4, discardLogger())
	recorder.Record(ctx, Event{
		Action:  ActionSettingsUpdated,
		Subject: "/v1/id-verify/settings",
		Outcome: "success",
	})

	select {
	case event := <-recorder.Events():
		assert.NotEmpty(t, event.ID)
		assert.Equal(t, CategorySecurity, event.Category)
		assert.Equal(t, now, event.Timestamp)
		assert.Equal(t, "req-1", event.RequestID)
		assert.Equal(t, "203.0.113.7", event.ClientIP)
		assert.Equal(t, "dashboard", event.Actor)
	default:
		t.Fatal("expected a queued event")
	}
}

func TestRecorderDropsWhenFull(t *testing.T) {
	recorder := NewRecorder(1, discardLogger())
	ctx := context.Background()

	recorder.Record(ctx, Event{Action: ActionSessionCreated})

	done := make(chan struct{})
	go func() {
		recorder.Record(ctx, Event{Action: ActionSessionCreated})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full buffer")
	}
	assert.Len(t, recorder.Events(), 1)
}

func TestNilRecorderIsNoop(t *testing.T) {
	var recorder *Recorder
	recorder.Record(context.Background(), Event{Action: ActionSessionCreated})
}

func TestWorkerPersistsEvents(t *testing.T) {
	store := NewInMemoryStore()
	recorder := NewRecorder(4, discardLogger())
	worker := NewWorker(store, nil, recorder.Events(), discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	recorder.Record(ctx, Event{Action: ActionSessionCreated, Subject: "/v1/id-verify/sessions", Outcome: "success"})
	recorder.Record(ctx, Event{Action: ActionSettingsReset, Subject: "/v1/id-verify/settings/reset", Outcome: "success"})

	require.Eventually(t, func() bool {
		events, err := store.ListRecent(context.Background(), 10)
		return err == nil && len(events) == 2
	}, time.Second, 10*time.Millisecond)

	events, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, ActionSettingsReset, events[0].Action)
	assert.Equal(t, ActionSessionCreated, events[1].Action)
}

func TestInMemoryStoreListRecentLimit(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(ctx, Event{Action: ActionSessionCreated}))
	}

	events, err := store.ListRecent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}
