// Package server wires the HTTP surface: public registration API, gated
// admin API, the cron reset trigger, and operational endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/monitor"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/qr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/registration"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/session"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/tickets"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/verification"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	Registrations *registration.Service
	Verifications *verification.Service
	Tickets       *tickets.Service
	Allocator     *qr.Allocator
	Sessions      *session.Manager
	Auth          *session.Auth
	Diagnostics   monitor.Store

	CronSecret   string
	StoreTimeout time.Duration
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.withStoreTimeout)
	r.Use(s.Sessions.Gate)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.studentLogin)
		r.Post("/auth/logout", s.studentLogout)
		r.Post("/admin/login", s.adminLogin)
		r.Post("/admin/logout", s.adminLogout)

		r.Post("/register", s.submitRegistration)
		r.Post("/teams", s.createTeam)
		r.Post("/teams/join", s.joinTeam)
		r.Get("/registrations/{code}", s.lookupRegistration)

		r.Post("/tickets", s.createTicket)
		r.Get("/tickets", s.listMyTickets)
	})

	r.Route("/admin/api", func(r chi.Router) {
		r.Get("/registrations", s.listRegistrations)
		r.Post("/registrations/{id}/verify", s.verifyRegistration)
		r.Delete("/registrations/{id}", s.deleteRegistration)
		r.Get("/tickets", s.listAllTickets)
		r.Post("/tickets/{id}/respond", s.respondTicket)
		r.Get("/diagnostics/recent", s.recentActivity)
	})

	r.Get("/cron/reset-qr", s.resetQR)

	return r
}

// withStoreTimeout bounds every request's store calls; a deadline hit
// surfaces as a retryable store error, never a hang.
func (s *Server) withStoreTimeout(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.StoreTimeout)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Store failures are
// reported generically; internal detail stays in the logs.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, apperr.ErrNoCapacity):
		writeJSON(w, http.StatusConflict, map[string]string{
			"error": "all payment codes for this amount are exhausted for today, please try another payment method",
		})
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "already processed"})
	default:
		log.Printf("request failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "temporary failure, please retry",
		})
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", apperr.ErrValidation)
	}
	return nil
}
