// Package registration implements the submission workflow: validate, allocate
// a payment code, then write the pending registration before any row that
// implies "paid".
package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/metrics"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/qr"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Service struct {
	store Store
	alloc *qr.Allocator
}

func NewService(store Store, alloc *qr.Allocator) *Service {
	return &Service{store: store, alloc: alloc}
}

// SubmitRequest carries an individual registrant's form submission.
type SubmitRequest struct {
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Phone  string   `json:"phone"`
	RollNo string   `json:"roll_no"`
	Events []string `json:"events"`
	Amount int      `json:"amount"`
}

// Submit validates the request, allocates a QR code, and creates the pending
// registration plus the registrant in one transaction. On NoCapacity it
// aborts with no partial writes.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.Registration, error) {
	if err := s.validateDetails(ctx, req.Name, req.Email, req.Phone, req.RollNo); err != nil {
		return nil, err
	}
	fee, err := s.validateEvents(ctx, req.Events)
	if err != nil {
		return nil, err
	}
	if req.Amount != fee {
		return nil, fmt.Errorf("amount %d does not match event fees %d: %w", req.Amount, fee, apperr.ErrValidation)
	}

	code, err := s.alloc.Allocate(ctx, req.Amount)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	registrantID := uuid.New()
	reg := &models.Registration{
		ID:            uuid.New(),
		Code:          NewRegistrationCode(),
		RegistrantID:  registrantID,
		Events:        mustJSON(req.Events),
		Amount:        req.Amount,
		QRCodeID:      code.ID,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     now,
	}
	registrant := &models.Registrant{
		ID:        registrantID,
		Name:      req.Name,
		Email:     strings.ToLower(req.Email),
		Phone:     req.Phone,
		RollNo:    req.RollNo,
		Role:      models.RoleIndividual,
		Status:    models.StatusPending,
		CreatedAt: now,
	}

	if err := s.store.CreateIndividual(ctx, reg, registrant); err != nil {
		return nil, err
	}
	metrics.RegistrationsCreated.Inc()
	log.Printf("registration %s created for %s (qr=%d)", reg.Code, registrant.Email, code.ID)
	return reg, nil
}

// Lookup returns a registration by its human-readable code.
func (s *Service) Lookup(ctx context.Context, code string) (*models.Registration, error) {
	if code == "" {
		return nil, fmt.Errorf("code is required: %w", apperr.ErrValidation)
	}
	return s.store.RegistrationByCode(ctx, code)
}

func (s *Service) validateDetails(ctx context.Context, name, email, phone, rollNo string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("name is required: %w", apperr.ErrValidation)
	case !strings.Contains(email, "@"):
		return fmt.Errorf("invalid email: %w", apperr.ErrValidation)
	case strings.TrimSpace(phone) == "":
		return fmt.Errorf("phone is required: %w", apperr.ErrValidation)
	case strings.TrimSpace(rollNo) == "":
		return fmt.Errorf("roll number is required: %w", apperr.ErrValidation)
	}
	taken, err := s.store.EmailTaken(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("email already registered: %w", apperr.ErrValidation)
	}
	return nil
}

// validateEvents checks that the selection is non-empty and every event is
// open, and returns the summed fee.
func (s *Service) validateEvents(ctx context.Context, slugs []string) (int, error) {
	if len(slugs) == 0 {
		return 0, fmt.Errorf("at least one event must be selected: %w", apperr.ErrValidation)
	}
	events, err := s.store.EventsBySlug(ctx, slugs)
	if err != nil {
		return 0, err
	}
	bySlug := make(map[string]models.Event, len(events))
	for _, e := range events {
		bySlug[e.Slug] = e
	}
	fee := 0
	for _, slug := range slugs {
		e, ok := bySlug[slug]
		if !ok {
			return 0, fmt.Errorf("unknown event %q: %w", slug, apperr.ErrValidation)
		}
		if !e.Open {
			return 0, fmt.Errorf("event %q is closed for registration: %w", slug, apperr.ErrValidation)
		}
		fee += e.Fee
	}
	return fee, nil
}

// NewRegistrationCode returns a human-readable identifier like TS26-3F9A1C.
func NewRegistrationCode() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "TS26-" + strings.ToUpper(raw[:6])
}

func mustJSON(v any) datatypes.JSON {
	data, _ := json.Marshal(v)
	return datatypes.JSON(data)
}
