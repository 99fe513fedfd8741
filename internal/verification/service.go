// Package verification implements the admin-driven payment decision flow:
// a registration moves from pending to verified or rejected exactly once.
package verification

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/metrics"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"github.com/google/uuid"
)

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Verify transitions a pending registration to the given decision, recording
// the verifying admin and timestamp. The transition is terminal; a second
// attempt fails with ErrConflict. Re-verification, if ever needed, is a
// separate administrative override, not this path.
func (s *Service) Verify(ctx context.Context, adminUser string, id uuid.UUID, decision, notes string) (*models.Registration, error) {
	if adminUser == "" {
		return nil, fmt.Errorf("admin session required: %w", apperr.ErrUnauthorized)
	}
	if decision != models.PaymentVerified && decision != models.PaymentRejected {
		return nil, fmt.Errorf("decision must be verified or rejected: %w", apperr.ErrValidation)
	}

	reg, err := s.store.ApplyDecision(ctx, id, decision, notes, adminUser, time.Now())
	if err != nil {
		return nil, err
	}
	metrics.Verifications.WithLabelValues(decision).Inc()
	log.Printf("registration %s marked %s by %s", reg.Code, decision, adminUser)
	return reg, nil
}

// Delete removes a registration entirely. Admin-only.
func (s *Service) Delete(ctx context.Context, adminUser string, id uuid.UUID) error {
	if adminUser == "" {
		return fmt.Errorf("admin session required: %w", apperr.ErrUnauthorized)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("registration %s deleted by %s", id, adminUser)
	return nil
}

// List returns recent registrations for the admin dashboard, optionally
// filtered by payment status.
func (s *Service) List(ctx context.Context, adminUser, status string) ([]models.Registration, error) {
	if adminUser == "" {
		return nil, fmt.Errorf("admin session required: %w", apperr.ErrUnauthorized)
	}
	return s.store.List(ctx, status, 200)
}
