// Package handler exposes the verification endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"idverify/internal/verification"
	dErrors "idverify/pkg/domain-errors"
	"idverify/pkg/platform/httputil"
	"idverify/pkg/requestcontext"
)

// Service defines the verification operation the handler needs.
type Service interface {
	Verify(ctx context.Context, req verification.Request) (verification.Result, error)
}

// Handler handles the verification endpoint. The endpoint sits behind API-key
// auth: it spends money on external analyses.
type Handler struct {
	logger *slog.Logger
	verify Service
}

func New(verify Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, verify: verify}
}

// Register mounts the verification route behind the auth middleware.
func (h *Handler) Register(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Group(func(g chi.Router) {
		g.Use(requireAuth)
		g.Post("/v1/id-verify", h.handleVerify)
	})
}

// verifyResponse wraps the result for transport.
type verifyResponse struct {
	Data verification.Result `json:"data"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[verification.Request](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.verify.Verify(ctx, req)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeInvalidInput) {
			h.logger.WarnContext(ctx, "verification request rejected",
				"request_id", requestID,
				"error", err.Error(),
			)
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "verification failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, verifyResponse{Data: result})
}
