// Package handler exposes the session handoff endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"idverify/internal/session"
	"idverify/pkg/platform/httputil"
	"idverify/pkg/requestcontext"
)

// Service defines the session operations the handler needs.
type Service interface {
	Create(ctx context.Context) (session.Session, error)
	Get(ctx context.Context, id string) (session.Session, error)
	Claim(ctx context.Context, id string) (session.Session, error)
	Update(ctx context.Context, id string, patch session.Patch) (session.Session, error)
	Stats(ctx context.Context) (session.Stats, error)
}

// Handler handles the session endpoints. The session ID is the handoff
// credential, so the lifecycle endpoints are reachable without an API key;
// only the operational stats endpoint sits behind auth.
type Handler struct {
	logger   *slog.Logger
	sessions Service
}

func New(sessions Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, sessions: sessions}
}

// Register mounts the session routes.
func (h *Handler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Post("/v1/id-verify/sessions", h.handleCreateSession)
	r.Get("/v1/id-verify/sessions/{sessionID}", h.handleGetSession)
	r.Put("/v1/id-verify/sessions/{sessionID}", h.handleUpdateSession)
	r.Group(func(g chi.Router) {
		g.Use(requireAuth)
		g.Get("/v1/id-verify/sessions-stats", h.handleSessionStats)
	})
}

// sessionResponse wraps a session for transport.
type sessionResponse struct {
	Session session.Session `json:"session"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	created, err := h.sessions.Create(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create session",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, sessionResponse{Session: created})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	found, err := h.sessions.Get(ctx, chi.URLParam(r, "sessionID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, sessionResponse{Session: found})
}

// handleUpdateSession applies a patch. A bare status=active patch is the
// participant device claiming the session; everything else is a lifecycle
// update.
func (h *Handler) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id := chi.URLParam(r, "sessionID")

	patch, ok := httputil.DecodeAndPrepare[session.Patch](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	var (
		updated session.Session
		err     error
	)
	if patch.Result == nil && patch.Status != nil && *patch.Status == session.StatusActive {
		updated, err = h.sessions.Claim(ctx, id)
	} else {
		updated, err = h.sessions.Update(ctx, id, patch)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "session update rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, sessionResponse{Session: updated})
}

func (h *Handler) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.sessions.Stats(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute session stats",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, stats)
}
