package session

import (
	"net/http"
	"strings"
)

const (
	adminArea    = "/admin"
	adminAPI     = "/admin/api"
	adminLogin   = "/admin/login"
	studentLogin = "/login"
	adminHome    = "/admin"
	studentHome  = "/dashboard"
)

// Gate is the request interceptor in front of the protected areas. It
// evaluates each request against the session cookies before any handler
// runs:
//
//   - admin area without a valid admin session  -> redirect to admin login
//   - admin login with a valid admin session    -> redirect to admin home
//   - student login with a valid student session -> redirect to dashboard
//   - anything else passes through unchanged
//
// Unlike a presence-only check, an expired or garbage token counts as no
// session at all.
func (m *Manager) Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if path == adminLogin {
			if m.hasAdminSession(r) {
				http.Redirect(w, r, adminHome, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if path == adminArea || strings.HasPrefix(path, adminArea+"/") {
			if !m.hasAdminSession(r) {
				// API callers get a status they can handle; page loads
				// get bounced to the login form.
				if strings.HasPrefix(path, adminAPI) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnauthorized)
					w.Write([]byte(`{"error":"unauthorized"}`))
					return
				}
				http.Redirect(w, r, adminLogin, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if path == studentLogin && m.hasStudentSession(r) {
			http.Redirect(w, r, studentHome, http.StatusFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *Manager) hasAdminSession(r *http.Request) bool {
	_, err := m.AdminFromRequest(r)
	return err == nil
}

func (m *Manager) hasStudentSession(r *http.Request) bool {
	_, err := m.StudentFromRequest(r)
	return err == nil
}
