package server

import (
	"fmt"
	"net/http"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) listRegistrations(w http.ResponseWriter, r *http.Request) {
	admin, err := s.Sessions.AdminFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	regs, err := s.Verifications.List(r.Context(), admin, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

func (s *Server) verifyRegistration(w http.ResponseWriter, r *http.Request) {
	admin, err := s.Sessions.AdminFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := parseUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Decision string `json:"decision"`
		Notes    string `json:"notes"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	reg, err := s.Verifications.Verify(r.Context(), admin, id, req.Decision, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

func (s *Server) deleteRegistration(w http.ResponseWriter, r *http.Request) {
	admin, err := s.Sessions.AdminFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := parseUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.Verifications.Delete(r.Context(), admin, id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) listAllTickets(w http.ResponseWriter, r *http.Request) {
	admin, err := s.Sessions.AdminFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := s.Tickets.ListAll(r.Context(), admin)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) respondTicket(w http.ResponseWriter, r *http.Request) {
	admin, err := s.Sessions.AdminFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := parseUUID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		Response string `json:"response"`
		Status   string `json:"status"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ticket, err := s.Tickets.Respond(r.Context(), admin, id, req.Response, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

// recentActivity is the point-in-time diagnostic view: latest registrants
// and teams, for eyeballing ordering anomalies.
func (s *Server) recentActivity(w http.ResponseWriter, r *http.Request) {
	if _, err := s.Sessions.AdminFromRequest(r); err != nil {
		writeError(w, err)
		return
	}
	registrants, err := s.Diagnostics.RecentRegistrants(r.Context(), 50)
	if err != nil {
		writeError(w, err)
		return
	}
	teams, err := s.Diagnostics.RecentTeams(r.Context(), 50)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"registrants": registrants,
		"teams":       teams,
	})
}

func parseUUID(r *http.Request, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed id: %w", apperr.ErrValidation)
	}
	return id, nil
}
