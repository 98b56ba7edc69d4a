package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/davmoren/credverify/internal/interfaces"
	"github.com/davmoren/credverify/internal/models/dto"
	"github.com/davmoren/credverify/internal/routes"

	"golang.org/x/time/rate"
)

// RateLimitMiddleware applies a process-wide token bucket to the wrapped
// handler. Limited requests are answered before the verification core runs.
func RateLimitMiddleware(limiter *rate.Limiter, metrics interfaces.Metrics, limitedCounter string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				if metrics != nil {
					metrics.IncCounter(limitedCounter)
				}
				w.Header().Set(routes.ContentType, routes.ContentTypeJson)
				w.WriteHeader(http.StatusTooManyRequests)
				resp := dto.RateLimitResponse{Message: routes.MsgRateLimited}
				_ = json.NewEncoder(w).Encode(resp)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
