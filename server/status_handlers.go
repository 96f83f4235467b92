package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-catalog-admin/internal/utils"
)

type sessionStatus struct {
	Authenticated bool       `json:"authenticated"`
	Email         string     `json:"email,omitempty"`
	Role          string     `json:"role,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	NextRefreshAt *time.Time `json:"next_refresh_at,omitempty"`
}

// SessionStatusHandler reports the console session (GET /api/session)
func (s *Server) SessionStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := sessionStatus{}
		if current, ok := s.deps.Sessions.Current(); ok {
			status.Authenticated = true
			status.Email = current.Email
			status.Role = string(current.Role)
			status.ExpiresAt = utils.Ptr(current.Expiry().UTC())
		}
		if s.deps.Refresh != nil {
			if next, ok := s.deps.Refresh.NextCheck(); ok {
				status.NextRefreshAt = utils.Ptr(next.UTC())
			}
		}
		writeJSON(w, http.StatusOK, status)
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
