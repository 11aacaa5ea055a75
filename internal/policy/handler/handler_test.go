package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idverify/internal/policy"
	"idverify/pkg/testutil"
)

func newTestHandler(t *testing.T) (*Handler, *policy.InMemoryStore, chi.Router) {
	t.Helper()

	store := policy.NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := policy.NewService(store, logger, nil)
	h := New(svc, logger)

	router := chi.NewRouter()
	// Pass-through auth so handler tests exercise routing without credentials.
	h.Register(router, func(next http.Handler) http.Handler { return next })
	return h, store, router
}

func TestGetSettings(t *testing.T) {
	t.Run("empty store serves defaults with fallback flag", func(t *testing.T) {
		_, _, router := newTestHandler(t)

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/id-verify/settings"))
		testutil.AssertStatus(t, rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[settingsResponse](t, rr)
		assert.True(t, resp.UsedFallback)
		assert.Equal(t, 18, resp.Settings.AgeRestrictions.MinimumAge)
	})

	t.Run("stored settings served without fallback", func(t *testing.T) {
		_, store, router := newTestHandler(t)

		stored := policy.Default()
		stored.OCRConfidence.MinimumConfidence = 0.9
		require.NoError(t, store.Save(t.Context(), stored))

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/v1/id-verify/settings"))
		testutil.AssertStatus(t, rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[settingsResponse](t, rr)
		assert.False(t, resp.UsedFallback)
		assert.Equal(t, 0.9, resp.Settings.OCRConfidence.MinimumConfidence)
	})
}

func TestUpdateSettings(t *testing.T) {
	t.Run("partial update preserves omitted groups", func(t *testing.T) {
		_, _, router := newTestHandler(t)

		body := map[string]any{
			"ocrConfidence": map[string]any{"minimumConfidence": 0.85},
		}
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, "/v1/id-verify/settings", body))
		testutil.AssertStatus(t, rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[settingsResponse](t, rr)
		assert.Equal(t, 0.85, resp.Settings.OCRConfidence.MinimumConfidence)
		assert.Equal(t, policy.Default().FaceMatchThresholds, resp.Settings.FaceMatchThresholds)
	})

	t.Run("partial group update preserves omitted leaves", func(t *testing.T) {
		_, _, router := newTestHandler(t)

		body := map[string]any{
			"faceMatchThresholds": map[string]any{"approved": 0.9},
		}
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, "/v1/id-verify/settings", body))
		testutil.AssertStatus(t, rr, http.StatusOK)

		resp := testutil.UnmarshalResponse[settingsResponse](t, rr)
		assert.Equal(t, 0.9, resp.Settings.FaceMatchThresholds.Approved)
		assert.Equal(t, 0.6, resp.Settings.FaceMatchThresholds.Rejected)
		assert.Equal(t, 0.7, resp.Settings.FaceMatchThresholds.ReviewRequired)
	})

	t.Run("inconsistent thresholds rejected", func(t *testing.T) {
		_, _, router := newTestHandler(t)

		body := map[string]any{
			"faceMatchThresholds": map[string]any{
				"approved":       0.5,
				"rejected":       0.8,
				"reviewRequired": 0.6,
			},
		}
		rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, "/v1/id-verify/settings", body))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
		testutil.AssertErrorCode(t, rr, "invalid_input")
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		_, _, router := newTestHandler(t)

		req := testutil.NewRequest(t, http.MethodPut, "/v1/id-verify/settings")
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestResetSettings(t *testing.T) {
	_, store, router := newTestHandler(t)

	stored := policy.Default()
	stored.AgeRestrictions.MinimumAge = 21
	require.NoError(t, store.Save(t.Context(), stored))

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/id-verify/settings/reset", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)

	resp := testutil.UnmarshalResponse[settingsResponse](t, rr)
	assert.Equal(t, 18, resp.Settings.AgeRestrictions.MinimumAge)

	persisted, err := store.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 18, persisted.AgeRestrictions.MinimumAge)
}
