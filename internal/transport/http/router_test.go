package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idverify/internal/apikey"
	"idverify/internal/audit"
	"idverify/internal/decision"
	"idverify/internal/policy"
	"idverify/internal/session"
	"idverify/internal/token"
	"idverify/internal/verification"
	"idverify/pkg/testutil"
)

type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, _ verification.Request) (verification.Result, error) {
	return verification.Result{Judgement: decision.JudgementApproved}, nil
}

type routerFixture struct {
	router     http.Handler
	recorder   *audit.Recorder
	keyService *apikey.Service
	tokens     *token.Service
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	keyService := apikey.NewService(apikey.NewInMemoryStore(), logger)
	tokens := token.NewService("router-test-key")
	recorder := audit.NewRecorder(16, logger)

	router := NewRouter(Deps{
		Logger:       logger,
		Sessions:     session.NewService(session.NewInMemoryStore(), logger, nil, 30*time.Minute, "https://verify.example.com"),
		Settings:     policy.NewService(policy.NewInMemoryStore(), logger, nil),
		Verification: stubVerifier{},
		APIKeys:      keyService,
		KeyAuth:      keyService,
		AdminAuth:    tokens,
		Recorder:     recorder,
	})

	return &routerFixture{
		router:     router,
		recorder:   recorder,
		keyService: keyService,
		tokens:     tokens,
	}
}

func (f *routerFixture) apiKey(t *testing.T) string {
	t.Helper()
	credential, _, err := f.keyService.Issue(context.Background(), "ops@example.com", "test-client")
	require.NoError(t, err)
	return credential
}

func (f *routerFixture) adminToken(t *testing.T) string {
	t.Helper()
	signed, err := f.tokens.Issue("ops@example.com", time.Hour)
	require.NoError(t, err)
	return signed
}

func TestHealthAndMetrics(t *testing.T) {
	f := newRouterFixture(t)

	rr := testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(f.router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestSessionRoutesAreOpen(t *testing.T) {
	f := newRouterFixture(t)

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/id-verify/sessions", nil))
	testutil.AssertStatus(t, rr, http.StatusCreated)
}

func TestSettingsWritesRequireAPIKey(t *testing.T) {
	f := newRouterFixture(t)
	body := map[string]any{
		"ocrConfidence": map[string]any{"minimumConfidence": 0.85},
	}

	t.Run("missing credential rejected and audited", func(t *testing.T) {
		rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPut, "/v1/id-verify/settings", body))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)

		select {
		case event := <-f.recorder.Events():
			assert.Equal(t, audit.ActionAuthFailed, event.Action)
		default:
			t.Fatal("expected an audit event for the rejected credential")
		}
	})

	t.Run("valid key accepted", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPut, "/v1/id-verify/settings", body)
		req.Header.Set("Authorization", "Bearer "+f.apiKey(t))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
	})
}

func TestVerificationRequiresAPIKey(t *testing.T) {
	f := newRouterFixture(t)
	body := map[string]string{"documentImage": "x", "selfieImage": "y"}

	rr := testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/v1/id-verify", body))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/id-verify", body)
	req.Header.Set("Authorization", "Bearer "+f.apiKey(t))
	rr = testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	f := newRouterFixture(t)
	body := map[string]string{"owner": "ops@example.com", "name": "dashboard"}

	t.Run("api key is not an admin credential", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/admin/api-keys", body)
		req.Header.Set("Authorization", "Bearer "+f.apiKey(t))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("admin token accepted", func(t *testing.T) {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/v1/admin/api-keys", body)
		req.Header.Set("Authorization", "Bearer "+f.adminToken(t))
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)
	})
}
