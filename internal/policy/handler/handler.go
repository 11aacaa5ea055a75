// Package handler exposes the policy settings endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"idverify/internal/policy"
	"idverify/pkg/platform/httputil"
	"idverify/pkg/requestcontext"
)

// Service defines the settings operations the handler needs.
type Service interface {
	Load(ctx context.Context) (policy.Settings, bool)
	Update(ctx context.Context, partial policy.Partial, updatedBy string) (policy.Settings, error)
	Reset(ctx context.Context, updatedBy string) (policy.Settings, error)
}

// Handler handles the settings endpoints. Reads are open; writes sit behind
// the auth middleware supplied at registration.
type Handler struct {
	logger   *slog.Logger
	settings Service
}

func New(settings Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, settings: settings}
}

// Register mounts the settings routes. requireAuth guards the mutating
// endpoints.
func (h *Handler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Get("/v1/id-verify/settings", h.handleGetSettings)
	r.Group(func(g chi.Router) {
		g.Use(requireAuth)
		g.Put("/v1/id-verify/settings", h.handleUpdateSettings)
		g.Post("/v1/id-verify/settings/reset", h.handleResetSettings)
	})
}

// settingsResponse wraps the settings document with the fallback flag so
// operators can tell a stored document from served defaults.
type settingsResponse struct {
	Settings     policy.Settings `json:"settings"`
	UsedFallback bool            `json:"usedFallback"`
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, usedFallback := h.settings.Load(r.Context())
	httputil.WriteJSON(w, http.StatusOK, settingsResponse{
		Settings:     settings,
		UsedFallback: usedFallback,
	})
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	partial, ok := httputil.DecodeAndPrepare[policy.Partial](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	updated, err := h.settings.Update(ctx, partial, requestcontext.Actor(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "settings update rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, settingsResponse{Settings: updated})
}

func (h *Handler) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := h.settings.Reset(ctx, requestcontext.Actor(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "settings reset failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, settingsResponse{Settings: settings})
}
