package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idverify/internal/session"
	"idverify/pkg/testutil"
)

func newTestRouter(t *testing.T) (chi.Router, *session.Service) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := session.NewService(session.NewInMemoryStore(), logger, nil, 30*time.Minute, "https://verify.example.com")
	h := New(svc, logger)

	router := chi.NewRouter()
	h.Register(router, func(next http.Handler) http.Handler { return next })
	return router, svc
}

func TestCreateSessionEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/id-verify/sessions", nil))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	resp := testutil.UnmarshalResponse[sessionResponse](t, rr)
	assert.NotEmpty(t, resp.Session.ID)
	assert.Equal(t, session.StatusPending, resp.Session.Status)
	assert.Contains(t, resp.Session.MobileURL, resp.Session.ID)
}

func TestGetSessionEndpoint(t *testing.T) {
	router, svc := newTestRouter(t)

	created, err := svc.Create(t.Context())
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/id-verify/sessions/"+created.ID))
		testutil.AssertStatus(t, rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[sessionResponse](t, rr)
		assert.Equal(t, created.ID, resp.Session.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/id-verify/sessions/nope"))
		testutil.AssertStatus(t, rr, http.StatusNotFound)
		testutil.AssertErrorCode(t, rr, "not_found")
	})
}

func TestUpdateSessionEndpoint(t *testing.T) {
	t.Run("status active claims the session", func(t *testing.T) {
		router, svc := newTestRouter(t)
		created, err := svc.Create(t.Context())
		require.NoError(t, err)

		body := map[string]any{"status": "active"}
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, "/v1/id-verify/sessions/"+created.ID, body))
		testutil.AssertStatus(t, rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[sessionResponse](t, rr)
		assert.Equal(t, session.StatusActive, resp.Session.Status)
	})

	t.Run("second claim conflicts", func(t *testing.T) {
		router, svc := newTestRouter(t)
		created, err := svc.Create(t.Context())
		require.NoError(t, err)

		body := map[string]any{"status": "active"}
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, "/v1/id-verify/sessions/"+created.ID, body))
		testutil.AssertStatus(t, rr, http.StatusOK)

		rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, "/v1/id-verify/sessions/"+created.ID, body))
		testutil.AssertStatus(t, rr, http.StatusConflict)
		testutil.AssertErrorCode(t, rr, "conflict")
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		router, svc := newTestRouter(t)
		created, err := svc.Create(t.Context())
		require.NoError(t, err)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPut, "/v1/id-verify/sessions/"+created.ID))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestSessionStatsEndpoint(t *testing.T) {
	router, svc := newTestRouter(t)

	_, err := svc.Create(t.Context())
	require.NoError(t, err)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/id-verify/sessions-stats"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	stats := testutil.UnmarshalResponse[session.Stats](t, rr)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Pending)
}
