package httpmiddleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/lewisedginton/shopping_chat_client/pkg/logger"
)

// CorrelationID gives every request a fresh correlation ID in both the request header and
// the request context. Client-supplied IDs are replaced.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.New().String()
			r.Header.Set(logger.CorrelationIDHeader, id)
			w.Header().Set(logger.CorrelationIDHeader, id)
			next.ServeHTTP(w, r.WithContext(logger.WithCorrelationIDContext(r.Context(), id)))
		})
	}
}
