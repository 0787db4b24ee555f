package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Outcomes of a state-changing request.
const (
	OutcomeApplied  = "applied"
	OutcomePending  = "pending"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// routePattern returns the matched chi pattern, or the raw path when nothing matched.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// mutates reports whether a request with method may change planner state.
func mutates(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// mutationOutcome maps a response status to an outcome. 409 is a move
// waiting for confirmation.
func mutationOutcome(status int) string {
	switch {
	case status == http.StatusConflict:
		return OutcomePending
	case status >= http.StatusInternalServerError:
		return OutcomeFailed
	case status >= http.StatusBadRequest:
		return OutcomeRejected
	}
	return OutcomeApplied
}
