// Package qr assigns shared payment codes to registrants while bounding how
// many registrants a code can absorb per day.
package qr

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/metrics"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
)

type Allocator struct {
	store Store
}

func NewAllocator(store Store) *Allocator {
	return &Allocator{store: store}
}

// Allocate picks an active code for the requested amount with remaining
// daily capacity. Callers surface ErrNoCapacity as a user-facing "try
// another payment method" error, never as a silent fallback.
func (a *Allocator) Allocate(ctx context.Context, amount int) (*models.QRCode, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", apperr.ErrValidation)
	}
	code, err := a.store.Claim(ctx, amount)
	if err != nil {
		if errors.Is(err, apperr.ErrNoCapacity) {
			metrics.QRNoCapacity.Inc()
		}
		return nil, err
	}
	metrics.QRAllocations.Inc()
	return code, nil
}

// ResetDaily zeroes every active code's usage counter. Idempotent; a rerun
// zeroes counters that are already zero. An allocation interleaving with the
// reset may be counted against the old day, which is an accepted inaccuracy.
func (a *Allocator) ResetDaily(ctx context.Context) (int64, error) {
	n, err := a.store.ResetDaily(ctx)
	if err != nil {
		return 0, err
	}
	log.Printf("daily qr reset: %d codes zeroed", n)
	return n, nil
}
