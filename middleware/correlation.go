package middleware

import (
	"net/http"

	"github.com/google/uuid"

	c "eventspot/context"
	"eventspot/logger"
)

const HeaderCorrelationID = "Correlation-Id"

func SetCorrelationIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(HeaderCorrelationID)
		ctx := c.SetContextWithValue(r.Context(), c.ContextKeyCorrelationID, correlationID)
		if len(correlationID) == 0 {
			correlationID = uuid.New().String()
			ctx = c.SetContextWithValue(ctx, c.ContextKeyCorrelationID, correlationID)
			logger.Debugf(ctx, "No correlation id provided. Generated a new one")
			r.Header.Set(HeaderCorrelationID, correlationID)
		}
		w.Header().Set(HeaderCorrelationID, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
