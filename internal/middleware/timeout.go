package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"course-manager/internal/model"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout bounds handler execution. The deadline also reaches the store and
// cache calls through the request context.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	body, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "REQUEST_TIMEOUT",
			Message: "request timed out",
		},
	})

	return func(next http.Handler) http.Handler {
		bounded := http.TimeoutHandler(next, timeout, string(body))

		// Headers set here survive a timeout; on success the handler's own
		// headers replace them.
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			bounded.ServeHTTP(w, r)
		})
	}
}
