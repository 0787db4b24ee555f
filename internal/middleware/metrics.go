package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/shard-legends/squad-planner-service/pkg/metrics"
)

// Metrics labels requests by chi route pattern so path parameters do not
// explode the label set. State-changing requests are also counted by outcome.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				route := routePattern(r)
				metrics.RecordHTTPRequest(r.Method, route, strconv.Itoa(ww.Status()), time.Since(start).Seconds())

				if mutates(r.Method) {
					metrics.RecordStateMutation(route, mutationOutcome(ww.Status()))
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
