package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go-learnhub/internal/model"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout cuts off handlers that outlive the configured budget and
// answers with the same response envelope the rest of the API uses.
func Timeout(limit time.Duration) func(http.Handler) http.Handler {
	if limit <= 0 {
		limit = defaultRequestTimeout
	}

	body, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "REQUEST_TIMEOUT",
			Message: "Request timed out",
		},
	})

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, limit, string(body))
	}
}
