package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"idverify/pkg/requestcontext"
)

// CredentialValidator checks a Bearer credential and returns the actor it
// belongs to (API key name or token subject). Implementations decide which
// credential formats they accept.
type CredentialValidator interface {
	ValidateCredential(ctx context.Context, credential string) (actor string, err error)
}

// writeJSONError writes a JSON error response with the given status code.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth guards mutating endpoints. Requests must carry a Bearer
// credential the validator accepts; the resolved actor lands in the context
// for audit stamping.
func RequireAuth(validator CredentialValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")

			credential, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || credential == "" {
				logger.WarnContext(ctx, "unauthorized access - missing credential",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			actor, err := validator.ValidateCredential(ctx, credential)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid credential",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or revoked credential")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithActor(ctx, actor)))
		})
	}
}
