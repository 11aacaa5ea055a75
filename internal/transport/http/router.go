// Package httptransport assembles the HTTP router: middleware chain, health
// and metrics endpoints, and the per-module handlers.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apikeyhandler "idverify/internal/apikey/handler"
	"idverify/internal/audit"
	policyhandler "idverify/internal/policy/handler"
	sessionhandler "idverify/internal/session/handler"
	verificationhandler "idverify/internal/verification/handler"
	"idverify/pkg/platform/httputil"
	"idverify/pkg/platform/middleware/auth"
	"idverify/pkg/platform/middleware/device"
	"idverify/pkg/platform/middleware/metadata"
	"idverify/pkg/platform/middleware/requestid"
	"idverify/pkg/platform/middleware/requesttime"
)

// Deps collects everything the router mounts. Recorder and HealthCheck may be
// nil.
type Deps struct {
	Logger *slog.Logger

	Sessions     sessionhandler.Service
	Settings     policyhandler.Service
	Verification verificationhandler.Service
	APIKeys      apikeyhandler.Service

	// KeyAuth validates client API keys; AdminAuth validates admin tokens.
	KeyAuth   auth.CredentialValidator
	AdminAuth auth.CredentialValidator

	Recorder    *audit.Recorder
	HealthCheck func(r *http.Request) error
}

// NewRouter builds the chi router with the shared middleware chain and all
// module routes mounted.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(device.Middleware)
	r.Use(audit.Middleware(deps.Recorder))

	r.Get("/healthz", handleHealth(deps.HealthCheck))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	requireKey := auth.RequireAuth(deps.KeyAuth, deps.Logger)
	requireAdmin := auth.RequireAuth(deps.AdminAuth, deps.Logger)

	sessionhandler.New(deps.Sessions, deps.Logger).Register(r, requireKey)
	policyhandler.New(deps.Settings, deps.Logger).Register(r, requireKey)
	verificationhandler.New(deps.Verification, deps.Logger).Register(r, requireKey)
	apikeyhandler.New(deps.APIKeys, deps.Logger).Register(r, requireAdmin)

	return r
}

func handleHealth(check func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"reason": err.Error(),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
