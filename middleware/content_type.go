package middleware

import (
	"net/http"
)

// SetContentTypeHeader defaults responses to JSON. Handlers serving other
// content set their own header before writing.
func SetContentTypeHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
