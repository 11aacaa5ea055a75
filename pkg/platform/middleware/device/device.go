// Package device classifies the calling device from its User-Agent. The
// session handoff flow uses this to record which kind of device claimed a
// verification session (the initiator is typically a desktop browser, the
// participant a mobile one).
package device

import (
	"net/http"

	"github.com/mssola/useragent"

	"idverify/pkg/requestcontext"
)

// Middleware parses the User-Agent and stores the device kind in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kind := Classify(r.Header.Get("User-Agent"))
		ctx := requestcontext.WithDeviceKind(r.Context(), kind)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Classify maps a raw User-Agent string to a device kind.
func Classify(rawUA string) requestcontext.DeviceKind {
	if rawUA == "" {
		return requestcontext.DeviceUnknown
	}
	ua := useragent.New(rawUA)
	if ua.Mobile() {
		return requestcontext.DeviceMobile
	}
	if ua.Bot() {
		return requestcontext.DeviceUnknown
	}
	return requestcontext.DeviceDesktop
}
