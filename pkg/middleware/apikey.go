package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
)

// APIKeyHeader is the header the chatbot client authenticates with.
const APIKeyHeader = "X-API-KEY"

// APIKeyAuth rejects requests whose X-API-KEY header does not match one of
// the configured service keys. Key comparison is constant-time. A missing or
// unknown key answers 403, matching what integrators already handle.
func APIKeyAuth(keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(APIKeyHeader)
			if presented == "" || !keyMatches(presented, keys) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{
						"code":    "FORBIDDEN",
						"message": "invalid or missing API key",
					},
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func keyMatches(presented string, keys []string) bool {
	for _, k := range keys {
		if k == "" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(presented), []byte(k)) == 1 {
			return true
		}
	}
	return false
}
