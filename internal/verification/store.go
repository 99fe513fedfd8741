package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/outbox"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the persistence surface for admin payment verification.
type Store interface {
	// ApplyDecision performs the terminal pending -> verified/rejected
	// transition and promotes the affected registrant (and, for bulk-paid
	// teams, the whole roster). Returns apperr.ErrNotFound when the
	// registration does not exist and apperr.ErrConflict when it already
	// left the pending state.
	ApplyDecision(ctx context.Context, id uuid.UUID, decision, notes, admin string, at time.Time) (*models.Registration, error)

	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, status string, limit int) ([]models.Registration, error)
}

type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) ApplyDecision(ctx context.Context, id uuid.UUID, decision, notes, admin string, at time.Time) (*models.Registration, error) {
	var reg models.Registration
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Conditional update, never read-then-write: the WHERE clause is
		// what makes the transition terminal under concurrent admins.
		res := tx.Model(&models.Registration{}).
			Where("id = ? AND payment_status = ?", id, models.PaymentPending).
			Updates(map[string]any{
				"payment_status": decision,
				"notes":          notes,
				"verified_by":    admin,
				"verified_at":    at,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			err := tx.First(&models.Registration{}, "id = ?", id).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrNotFound
			}
			if err != nil {
				return err
			}
			return apperr.ErrConflict
		}

		if err := tx.First(&reg, "id = ?", id).Error; err != nil {
			return err
		}

		status := models.StatusApproved
		if decision == models.PaymentRejected {
			status = models.StatusRejected
		}
		if err := tx.Model(&models.Registrant{}).
			Where("id = ?", reg.RegistrantID).
			Update("status", status).Error; err != nil {
			return err
		}
		if err := outbox.Add(tx, models.EntityRegistrant, reg.RegistrantID, models.OpUpsert, nil); err != nil {
			return err
		}

		if reg.TeamID != nil && decision == models.PaymentVerified {
			var team models.Team
			if err := tx.First(&team, "id = ?", *reg.TeamID).Error; err != nil {
				return err
			}
			if err := tx.Model(&team).Update("status", models.TeamActive).Error; err != nil {
				return err
			}
			if team.PaymentMode == models.PayModeBulk {
				// leader's payment covers the roster
				if err := tx.Model(&models.Registrant{}).
					Where("team_id = ? AND status = ?", team.ID, models.StatusUnpaid).
					Update("status", models.StatusApproved).Error; err != nil {
					return err
				}
			}
			if err := outbox.Add(tx, models.EntityTeam, team.ID, models.OpUpsert, nil); err != nil {
				return err
			}
		}

		// refreshes the admin listing index, i.e. invalidates the cached view
		return outbox.Add(tx, models.EntityRegistration, reg.ID, models.OpUpsert, nil)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("apply decision on %s: %v: %w", id, err, apperr.ErrStore)
	}
	return &reg, nil
}

func (s *GormStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Registration{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		return outbox.Add(tx, models.EntityRegistration, id, models.OpDelete, nil)
	})
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete registration %s: %v: %w", id, err, apperr.ErrStore)
	}
	return nil
}

func (s *GormStore) List(ctx context.Context, status string, limit int) ([]models.Registration, error) {
	q := s.DB.WithContext(ctx).Order("created_at desc").Limit(limit)
	if status != "" {
		q = q.Where("payment_status = ?", status)
	}
	var regs []models.Registration
	if err := q.Find(&regs).Error; err != nil {
		return nil, fmt.Errorf("list registrations: %v: %w", err, apperr.ErrStore)
	}
	return regs, nil
}
