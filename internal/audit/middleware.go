package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// routeAction maps mutating endpoints to their audit action. Reads are not
// audited. The route pattern, not the request path, is used so path
// parameters such as the session ID stay out of the trail.
func routeAction(method, pattern string) (Action, bool) {
	switch method + " " + pattern {
	case "POST /v1/id-verify/sessions":
		return ActionSessionCreated, true
	case "PUT /v1/id-verify/sessions/{sessionID}":
		return ActionSessionUpdated, true
	case "POST /v1/id-verify":
		return ActionVerificationPerformed, true
	case "PUT /v1/id-verify/settings":
		return ActionSettingsUpdated, true
	case "POST /v1/id-verify/settings/reset":
		return ActionSettingsReset, true
	case "POST /v1/admin/api-keys":
		return ActionAPIKeyIssued, true
	case "POST /v1/admin/api-keys/{keyID}/revoke":
		return ActionAPIKeyRevoked, true
	default:
		return "", false
	}
}

// Middleware records an audit event for every mutating request and for every
// rejected credential, regardless of route.
func Middleware(recorder *Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			status := ww.Status()

			action, audited := routeAction(r.Method, pattern)
			if status == http.StatusUnauthorized {
				action, audited = ActionAuthFailed, true
			}
			if !audited {
				return
			}

			event := Event{
				Action:  action,
				Subject: pattern,
				Outcome: "success",
			}
			if status >= 400 {
				event.Outcome = "failure"
				event.Reason = http.StatusText(status)
			}
			recorder.Record(r.Context(), event)
		})
	}
}
