package qr

import (
	"context"
	"sync"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
)

// FakeStore is an in-memory Store with the same conditional-claim semantics
// as the gorm implementation. Used by allocator and registration tests.
type FakeStore struct {
	mu    sync.Mutex
	Codes []*models.QRCode

	// ClaimErr, when set, is returned by every Claim call.
	ClaimErr error
}

func (f *FakeStore) Claim(ctx context.Context, amount int) (*models.QRCode, error) {
	if f.ClaimErr != nil {
		return nil, f.ClaimErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var best *models.QRCode
	for _, c := range f.Codes {
		if !c.Active || c.Amount != amount || c.TodayUsage >= c.DailyCap {
			continue
		}
		if best == nil || c.ID < best.ID {
			best = c
		}
	}
	if best == nil {
		return nil, apperr.ErrNoCapacity
	}
	best.TodayUsage++
	cp := *best
	return &cp, nil
}

func (f *FakeStore) ResetDaily(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, c := range f.Codes {
		if c.Active {
			c.TodayUsage = 0
			n++
		}
	}
	return n, nil
}
