// Package handler exposes the API key management endpoints. All of them sit
// behind the admin token middleware supplied at registration.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"idverify/internal/apikey"
	"idverify/pkg/platform/httputil"
	"idverify/pkg/requestcontext"
)

// Service defines the key operations the handler needs.
type Service interface {
	Issue(ctx context.Context, owner, name string) (string, apikey.Key, error)
	Revoke(ctx context.Context, id string) error
	List(ctx context.Context) ([]apikey.Public, error)
}

type Handler struct {
	logger *slog.Logger
	keys   Service
}

func New(keys Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, keys: keys}
}

func (h *Handler) Register(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Group(func(g chi.Router) {
		g.Use(requireAdmin)
		g.Post("/v1/admin/api-keys", h.handleIssue)
		g.Get("/v1/admin/api-keys", h.handleList)
		g.Post("/v1/admin/api-keys/{keyID}/revoke", h.handleRevoke)
	})
}

type issueRequest struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// issueResponse carries the plaintext credential. It is returned exactly once
// at issuance and cannot be recovered afterwards.
type issueResponse struct {
	Credential string        `json:"credential"`
	Key        apikey.Public `json:"key"`
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[issueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	credential, key, err := h.keys.Issue(ctx, req.Owner, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "api key issuance rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, issueResponse{
		Credential: credential,
		Key:        key.Public(),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	keys, err := h.keys.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "api key listing failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string][]apikey.Public{"keys": keys})
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	keyID := chi.URLParam(r, "keyID")

	if err := h.keys.Revoke(ctx, keyID); err != nil {
		h.logger.WarnContext(ctx, "api key revocation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
