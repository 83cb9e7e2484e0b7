package middleware

import (
	"net/http"

	"eventspot/logger"
)

var redactedHeaders = []string{"Authorization", "Cookie"}

func RequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers := r.Header.Clone()
		for _, h := range redactedHeaders {
			if headers.Get(h) != "" {
				headers.Set(h, "[redacted]")
			}
		}
		logger.Debugf(r.Context(), "Request - %s %s, Headers: %+v", r.Method, r.URL, headers)
		next.ServeHTTP(w, r)
	})
}
