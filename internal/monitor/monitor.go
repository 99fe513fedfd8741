// Package monitor polices the payment-ordering invariant: outside the
// member-join exemption, no registrant may reach a paid-adjacent status
// without a payment-proof row at least as old as itself. It tails the outbox
// with its own cursor and never mutates anything; false positives are
// operational noise, not correctness failures.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/metrics"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Store interface {
	// OutboxAfter reads events with id > cursor, oldest first. Reads do not
	// consume: the sync worker's processed flag is ignored here.
	OutboxAfter(ctx context.Context, cursor int64, limit int) ([]models.Outbox, error)
	RegistrantByID(ctx context.Context, id uuid.UUID) (*models.Registrant, error)
	EarliestRegistrationForRegistrant(ctx context.Context, registrantID uuid.UUID) (*models.Registration, error)
	EarliestRegistrationForTeam(ctx context.Context, teamID uuid.UUID) (*models.Registration, error)
	RecentRegistrants(ctx context.Context, limit int) ([]models.Registrant, error)
	RecentTeams(ctx context.Context, limit int) ([]models.Team, error)
}

type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) OutboxAfter(ctx context.Context, cursor int64, limit int) ([]models.Outbox, error) {
	var evts []models.Outbox
	err := s.DB.WithContext(ctx).Where("id > ?", cursor).
		Order("id asc").Limit(limit).Find(&evts).Error
	if err != nil {
		return nil, fmt.Errorf("read outbox after %d: %v: %w", cursor, err, apperr.ErrStore)
	}
	return evts, nil
}

func (s *GormStore) RegistrantByID(ctx context.Context, id uuid.UUID) (*models.Registrant, error) {
	var r models.Registrant
	err := s.DB.WithContext(ctx).First(&r, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("fetch registrant %s: %v: %w", id, err, apperr.ErrStore)
	}
	return &r, nil
}

func (s *GormStore) EarliestRegistrationForRegistrant(ctx context.Context, registrantID uuid.UUID) (*models.Registration, error) {
	var reg models.Registration
	err := s.DB.WithContext(ctx).Where("registrant_id = ?", registrantID).
		Order("created_at asc").First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("fetch registration for %s: %v: %w", registrantID, err, apperr.ErrStore)
	}
	return &reg, nil
}

func (s *GormStore) EarliestRegistrationForTeam(ctx context.Context, teamID uuid.UUID) (*models.Registration, error) {
	var reg models.Registration
	err := s.DB.WithContext(ctx).Where("team_id = ?", teamID).
		Order("created_at asc").First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("fetch registration for team %s: %v: %w", teamID, err, apperr.ErrStore)
	}
	return &reg, nil
}

func (s *GormStore) RecentRegistrants(ctx context.Context, limit int) ([]models.Registrant, error) {
	var out []models.Registrant
	err := s.DB.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("recent registrants: %v: %w", err, apperr.ErrStore)
	}
	return out, nil
}

func (s *GormStore) RecentTeams(ctx context.Context, limit int) ([]models.Team, error) {
	var out []models.Team
	err := s.DB.WithContext(ctx).Order("created_at desc").Limit(limit).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("recent teams: %v: %w", err, apperr.ErrStore)
	}
	return out, nil
}

type Monitor struct {
	store  Store
	cursor int64
}

func New(store Store) *Monitor {
	return &Monitor{store: store}
}

// Run tails the outbox and flags ordering violations in near-real time.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.ScanOnce(ctx); err != nil {
				log.Printf("monitor error: %v", err)
			}
		}
	}
}

// ScanOnce processes one batch of outbox events past the cursor and returns
// after flagging any violations it finds.
func (m *Monitor) ScanOnce(ctx context.Context) error {
	evts, err := m.store.OutboxAfter(ctx, m.cursor, 200)
	if err != nil {
		return err
	}
	for _, e := range evts {
		m.cursor = e.ID
		if e.Op != models.OpUpsert {
			continue
		}
		switch e.EntityType {
		case models.EntityRegistrant:
			m.checkRegistrantEvent(ctx, e.EntityID)
		case models.EntityTeam:
			m.checkTeamEvent(ctx, e.EntityID)
		}
	}
	return nil
}

func (m *Monitor) checkRegistrantEvent(ctx context.Context, id uuid.UUID) {
	r, err := m.store.RegistrantByID(ctx, id)
	if err != nil {
		log.Printf("monitor: registrant %s lookup: %v", id, err)
		return
	}
	reg, err := m.store.EarliestRegistrationForRegistrant(ctx, r.ID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		log.Printf("monitor: registration lookup for %s: %v", r.ID, err)
		return
	}
	if violation := CheckRegistrantOrdering(r, reg); violation != "" {
		metrics.LeaksDetected.Inc()
		log.Printf("LEAK registrant=%s email=%s: %s", r.ID, r.Email, violation)
	}
}

func (m *Monitor) checkTeamEvent(ctx context.Context, id uuid.UUID) {
	if _, err := m.store.EarliestRegistrationForTeam(ctx, id); errors.Is(err, apperr.ErrNotFound) {
		metrics.LeaksDetected.Inc()
		log.Printf("LEAK team=%s: team exists with no payment intent", id)
	} else if err != nil {
		log.Printf("monitor: registration lookup for team %s: %v", id, err)
	}
}

// CheckRegistrantOrdering reports why a registrant row violates the
// ordering invariant, or "" when it is clean. Members are exempt: they join
// UNPAID because the team leader is the payer.
func CheckRegistrantOrdering(r *models.Registrant, earliest *models.Registration) string {
	if r.Role == models.RoleMember {
		return ""
	}
	if r.Status != models.StatusPending && r.Status != models.StatusApproved {
		return ""
	}
	if earliest == nil {
		return fmt.Sprintf("status %s with no payment proof", r.Status)
	}
	if earliest.CreatedAt.After(r.CreatedAt) {
		return fmt.Sprintf("status %s predates payment proof %s", r.Status, earliest.Code)
	}
	return ""
}
