package middleware

import (
	"net/http"
	"strings"

	"jqery/internal/requestid"
)

const maxRequestIDLen = 128

// RequestID propagates an inbound X-Request-Id (or mints one) into the
// request context and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestid.Header))
		if id == "" || len(id) > maxRequestIDLen {
			id = requestid.New()
		}
		w.Header().Set(requestid.Header, id)
		next.ServeHTTP(w, r.WithContext(requestid.With(r.Context(), id)))
	})
}
