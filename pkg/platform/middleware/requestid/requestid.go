package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"idverify/pkg/requestcontext"
)

// Header is the request/response header carrying the correlation ID.
const Header = "X-Request-Id"

// Middleware assigns each request a correlation ID. An incoming X-Request-Id
// is trusted and propagated; otherwise a fresh UUID is generated. The ID is
// echoed on the response so clients can reference it in support requests.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(Header, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
