// Package tickets is the support-ticket surface: students open tickets,
// admins respond and close them.
package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store interface {
	Create(ctx context.Context, t *models.SupportTicket) error
	ListAll(ctx context.Context, limit int) ([]models.SupportTicket, error)
	ListForRegistrant(ctx context.Context, registrantID uuid.UUID) ([]models.SupportTicket, error)
	Respond(ctx context.Context, id uuid.UUID, response, status string) (*models.SupportTicket, error)
}

type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) Create(ctx context.Context, t *models.SupportTicket) error {
	if err := s.DB.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create ticket for %s: %v: %w", t.RegistrantID, err, apperr.ErrStore)
	}
	return nil
}

func (s *GormStore) ListAll(ctx context.Context, limit int) ([]models.SupportTicket, error) {
	var out []models.SupportTicket
	if err := s.DB.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list tickets: %v: %w", err, apperr.ErrStore)
	}
	return out, nil
}

func (s *GormStore) ListForRegistrant(ctx context.Context, registrantID uuid.UUID) ([]models.SupportTicket, error) {
	var out []models.SupportTicket
	if err := s.DB.WithContext(ctx).Where("registrant_id = ?", registrantID).
		Order("created_at desc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list tickets for %s: %v: %w", registrantID, err, apperr.ErrStore)
	}
	return out, nil
}

func (s *GormStore) Respond(ctx context.Context, id uuid.UUID, response, status string) (*models.SupportTicket, error) {
	res := s.DB.WithContext(ctx).Model(&models.SupportTicket{}).
		Where("id = ?", id).
		Updates(map[string]any{"response": response, "status": status})
	if res.Error != nil {
		return nil, fmt.Errorf("respond to ticket %s: %v: %w", id, res.Error, apperr.ErrStore)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	var t models.SupportTicket
	if err := s.DB.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("fetch ticket %s: %v: %w", id, err, apperr.ErrStore)
	}
	return &t, nil
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create opens a ticket for a registrant.
func (s *Service) Create(ctx context.Context, registrantID uuid.UUID, issueType, description string) (*models.SupportTicket, error) {
	if registrantID == uuid.Nil {
		return nil, fmt.Errorf("registrant is required: %w", apperr.ErrValidation)
	}
	if strings.TrimSpace(issueType) == "" || strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("issue type and description are required: %w", apperr.ErrValidation)
	}
	t := &models.SupportTicket{
		ID:           uuid.New(),
		RegistrantID: registrantID,
		IssueType:    issueType,
		Description:  description,
		Status:       models.TicketOpen,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListAll returns recent tickets for the admin dashboard.
func (s *Service) ListAll(ctx context.Context, adminUser string) ([]models.SupportTicket, error) {
	if adminUser == "" {
		return nil, fmt.Errorf("admin session required: %w", apperr.ErrUnauthorized)
	}
	return s.store.ListAll(ctx, 200)
}

// ListMine returns the requesting student's own tickets.
func (s *Service) ListMine(ctx context.Context, registrantID uuid.UUID) ([]models.SupportTicket, error) {
	if registrantID == uuid.Nil {
		return nil, fmt.Errorf("student session required: %w", apperr.ErrUnauthorized)
	}
	return s.store.ListForRegistrant(ctx, registrantID)
}

// Respond records an admin response and moves the ticket's status.
func (s *Service) Respond(ctx context.Context, adminUser string, id uuid.UUID, response, status string) (*models.SupportTicket, error) {
	if adminUser == "" {
		return nil, fmt.Errorf("admin session required: %w", apperr.ErrUnauthorized)
	}
	if status != models.TicketOpen && status != models.TicketResolved {
		return nil, fmt.Errorf("status must be open or resolved: %w", apperr.ErrValidation)
	}
	if strings.TrimSpace(response) == "" {
		return nil, fmt.Errorf("response is required: %w", apperr.ErrValidation)
	}
	return s.store.Respond(ctx, id, response, status)
}
