package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/davmoren/credverify/internal/interfaces"
	"github.com/davmoren/credverify/internal/models/dto"
	"github.com/davmoren/credverify/internal/routes"
)

// RecoveryMiddleware catches handler panics and converts them into the same
// opaque 500 body the store-failure path uses. The panic value and stack go
// to the operator log only.
func RecoveryMiddleware(logger interfaces.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("Recovered from panic",
						"method", r.Method,
						"path", r.URL.Path,
						"panic", rec,
						"stack", string(debug.Stack()),
					)

					w.Header().Set(routes.ContentType, routes.ContentTypeJson)
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(&dto.UnavailableResponseDTO{Error: routes.MsgQueryError})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
