// Package httputil centralizes JSON encoding and domain error translation for
// HTTP handlers, so every endpoint returns the same envelopes.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "idverify/pkg/domain-errors"
)

// errorResponse is the JSON envelope for failed requests.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into an HTTP response. Unknown error
// types map to 500; descriptions of internal errors are omitted so storage
// details never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeInternal
	description := ""

	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		code = domainErr.Code
		if code != dErrors.CodeInternal {
			description = domainErr.Description
		}
	}

	WriteJSON(w, dErrors.ToHTTPStatus(code), errorResponse{
		Error:            string(code),
		ErrorDescription: description,
	})
}

// DecodeAndPrepare decodes a JSON request body into T. On failure it writes a
// bad_request response, logs the rejection, and returns ok=false so the caller
// can bail with a bare return.
func DecodeAndPrepare[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if logger != nil {
			logger.WarnContext(ctx, "invalid request body",
				"request_id", requestID,
				"error", err,
			)
		}
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		var zero T
		return zero, false
	}
	return req, true
}
