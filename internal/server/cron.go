package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"
)

// resetQR is the externally scheduled daily reset. It mutates nothing unless
// the bearer credential matches the server-held secret.
func (s *Server) resetQR(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.CronSecret)) != 1 {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	n, err := s.Allocator.ResetDaily(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reset": true,
		"codes": n,
		"at":    time.Now().UTC().Format(time.RFC3339),
	})
}
