package audit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuditedRouter(recorder *Recorder) http.Handler {
	r := chi.NewRouter()
	r.Use(Middleware(recorder))
	r.Post("/v1/id-verify/sessions", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	r.Get("/v1/id-verify/sessions/{sessionID}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Put("/v1/id-verify/settings", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	return r
}

func drain(recorder *Recorder) []Event {
	var events []Event
	for {
		select {
		case event := <-recorder.Events():
			events = append(events, event)
		default:
			return events
		}
	}
}

func TestMiddlewareRecordsMutations(t *testing.T) {
	recorder := NewRecorder(4, discardLogger())
	router := newAuditedRouter(recorder)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/id-verify/sessions/a1b2", nil))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/id-verify/sessions", nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	events := drain(recorder)
	require.Len(t, events, 1)
	assert.Equal(t, ActionSessionCreated, events[0].Action)
	assert.Equal(t, "/v1/id-verify/sessions", events[0].Subject)
	assert.Equal(t, "success", events[0].Outcome)
}

func TestMiddlewareSkipsReads(t *testing.T) {
	recorder := NewRecorder(4, discardLogger())
	router := newAuditedRouter(recorder)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/id-verify/sessions/a1b2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Empty(t, drain(recorder))
}

func TestMiddlewareRecordsAuthFailures(t *testing.T) {
	recorder := NewRecorder(4, discardLogger())
	router := newAuditedRouter(recorder)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/id-verify/settings", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	events := drain(recorder)
	require.Len(t, events, 1)
	assert.Equal(t, ActionAuthFailed, events[0].Action)
	assert.Equal(t, "failure", events[0].Outcome)
	assert.Equal(t, "Unauthorized", events[0].Reason)
}
