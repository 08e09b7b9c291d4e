package middleware

import (
	"log/slog"
	"net/http"
	"regexp"

	"github.com/gorilla/mux"

	"residadmin/pkg/generator"
)

const RequestIDHeader = "X-Request-ID"

var validRequestID = regexp.MustCompile(`^[0-9A-Za-z_-]{1,64}$`)

// RequestID keeps a well-formed incoming X-Request-ID or assigns a new one,
// echoes it on the response and stores it in the request context.
func RequestID(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if !validRequestID.MatchString(id) {
				var err error
				if id, err = generator.RequestID(); err != nil {
					logger.Error("request id", "error", err)
					next.ServeHTTP(w, r)
					return
				}
			}

			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(generator.WithRequestID(r.Context(), id)))
		})
	}
}
