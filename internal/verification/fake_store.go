package verification

import (
	"context"
	"sync"
	"time"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"github.com/google/uuid"
)

// FakeStore is an in-memory Store with the same terminal-transition
// semantics as the gorm implementation.
type FakeStore struct {
	mu            sync.Mutex
	Registrations []*models.Registration
	Registrants   []*models.Registrant
	Teams         []*models.Team

	// WriteErr, when set, is returned by every mutating call.
	WriteErr error
}

func (f *FakeStore) ApplyDecision(ctx context.Context, id uuid.UUID, decision, notes, admin string, at time.Time) (*models.Registration, error) {
	if f.WriteErr != nil {
		return nil, f.WriteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var reg *models.Registration
	for _, r := range f.Registrations {
		if r.ID == id {
			reg = r
			break
		}
	}
	if reg == nil {
		return nil, apperr.ErrNotFound
	}
	if reg.PaymentStatus != models.PaymentPending {
		return nil, apperr.ErrConflict
	}

	reg.PaymentStatus = decision
	reg.Notes = notes
	reg.VerifiedBy = &admin
	reg.VerifiedAt = &at

	status := models.StatusApproved
	if decision == models.PaymentRejected {
		status = models.StatusRejected
	}
	for _, r := range f.Registrants {
		if r.ID == reg.RegistrantID {
			r.Status = status
		}
	}
	if reg.TeamID != nil && decision == models.PaymentVerified {
		for _, t := range f.Teams {
			if t.ID != *reg.TeamID {
				continue
			}
			t.Status = models.TeamActive
			if t.PaymentMode == models.PayModeBulk {
				for _, r := range f.Registrants {
					if r.TeamID != nil && *r.TeamID == t.ID && r.Status == models.StatusUnpaid {
						r.Status = models.StatusApproved
					}
				}
			}
		}
	}
	cp := *reg
	return &cp, nil
}

func (f *FakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.Registrations {
		if r.ID == id {
			f.Registrations = append(f.Registrations[:i], f.Registrations[i+1:]...)
			return nil
		}
	}
	return apperr.ErrNotFound
}

func (f *FakeStore) List(ctx context.Context, status string, limit int) ([]models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Registration
	for _, r := range f.Registrations {
		if status != "" && r.PaymentStatus != status {
			continue
		}
		out = append(out, *r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
