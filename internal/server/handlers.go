package server

import (
	"net/http"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/registration"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/session"
	"github.com/go-chi/chi/v5"
)

func (s *Server) submitRegistration(w http.ResponseWriter, r *http.Request) {
	var req registration.SubmitRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	reg, err := s.Registrations.Submit(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

func (s *Server) createTeam(w http.ResponseWriter, r *http.Request) {
	var req registration.TeamRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	reg, team, err := s.Registrations.CreateTeam(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"registration": reg, "team": team})
}

func (s *Server) joinTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JoinCode string `json:"join_code"`
		registration.MemberRequest
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	member, err := s.Registrations.JoinTeam(r.Context(), req.JoinCode, req.MemberRequest)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, member)
}

func (s *Server) lookupRegistration(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	reg, err := s.Registrations.Lookup(r.Context(), code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

func (s *Server) createTicket(w http.ResponseWriter, r *http.Request) {
	registrantID, err := s.Sessions.StudentFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		IssueType   string `json:"issue_type"`
		Description string `json:"description"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ticket, err := s.Tickets.Create(r.Context(), registrantID, req.IssueType, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ticket)
}

func (s *Server) listMyTickets(w http.ResponseWriter, r *http.Request) {
	registrantID, err := s.Sessions.StudentFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := s.Tickets.ListMine(r.Context(), registrantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) studentLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email  string `json:"email"`
		RollNo string `json:"roll_no"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	token, err := s.Auth.StudentLogin(r.Context(), req.Email, req.RollNo)
	if err != nil {
		writeError(w, err)
		return
	}
	setSessionCookie(w, session.StudentCookie, token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged in"})
}

func (s *Server) studentLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, session.StudentCookie)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) adminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	token, err := s.Auth.AdminLogin(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	setSessionCookie(w, session.AdminCookie, token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged in"})
}

func (s *Server) adminLogout(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w, session.AdminCookie)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func setSessionCookie(w http.ResponseWriter, name, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
