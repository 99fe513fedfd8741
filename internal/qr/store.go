package qr

import (
	"context"
	"errors"
	"fmt"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"gorm.io/gorm"
)

// Store is the persistence surface the allocator needs. The gorm
// implementation performs the claim as a single conditional update; tests
// substitute an in-memory fake with the same semantics.
type Store interface {
	// Claim atomically selects the lowest-id active code for amount with
	// remaining capacity and increments its usage. Returns
	// apperr.ErrNoCapacity when no code qualifies.
	Claim(ctx context.Context, amount int) (*models.QRCode, error)

	// ResetDaily zeroes today_usage for all active codes and reports how
	// many rows it touched. Idempotent.
	ResetDaily(ctx context.Context) (int64, error)
}

type GormStore struct {
	DB *gorm.DB
}

// Claim must never be split into a read and a write: two concurrent
// allocators would both observe remaining capacity and both increment past
// the cap. The capacity check is repeated in the outer WHERE so the update
// re-validates under lock.
func (s *GormStore) Claim(ctx context.Context, amount int) (*models.QRCode, error) {
	var code models.QRCode
	tx := s.DB.WithContext(ctx).Raw(`
		UPDATE qr_codes SET today_usage = today_usage + 1, updated_at = now()
		WHERE id = (
		  SELECT id FROM qr_codes
		  WHERE active = true AND amount = ? AND today_usage < daily_cap
		  ORDER BY id ASC
		  LIMIT 1
		  FOR UPDATE SKIP LOCKED
		)
		AND active = true AND today_usage < daily_cap
		RETURNING *`, amount).Scan(&code)
	if tx.Error != nil {
		if errors.Is(tx.Error, context.DeadlineExceeded) {
			return nil, fmt.Errorf("claim qr code amount=%d: %w", amount, apperr.ErrStore)
		}
		return nil, fmt.Errorf("claim qr code amount=%d: %v: %w", amount, tx.Error, apperr.ErrStore)
	}
	if tx.RowsAffected == 0 {
		return nil, apperr.ErrNoCapacity
	}
	return &code, nil
}

func (s *GormStore) ResetDaily(ctx context.Context) (int64, error) {
	tx := s.DB.WithContext(ctx).
		Model(&models.QRCode{}).
		Where("active = ?", true).
		Update("today_usage", 0)
	if tx.Error != nil {
		return 0, fmt.Errorf("reset daily usage: %v: %w", tx.Error, apperr.ErrStore)
	}
	return tx.RowsAffected, nil
}
