package registration

import (
	"context"
	"strings"
	"sync"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"github.com/google/uuid"
)

// FakeStore is an in-memory Store for service tests.
type FakeStore struct {
	mu            sync.Mutex
	Events        []models.Event
	Registrants   []*models.Registrant
	Teams         []*models.Team
	Registrations []*models.Registration

	// WriteErr, when set, is returned by every write call.
	WriteErr error
}

func (f *FakeStore) EventsBySlug(ctx context.Context, slugs []string) ([]models.Event, error) {
	want := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		want[s] = true
	}
	var out []models.Event
	for _, e := range f.Events {
		if want[e.Slug] {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *FakeStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.Registrants {
		if strings.EqualFold(r.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeStore) CreateIndividual(ctx context.Context, reg *models.Registration, r *models.Registrant) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Registrations = append(f.Registrations, reg)
	f.Registrants = append(f.Registrants, r)
	return nil
}

func (f *FakeStore) CreateTeam(ctx context.Context, reg *models.Registration, team *models.Team, leader *models.Registrant) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Registrations = append(f.Registrations, reg)
	f.Teams = append(f.Teams, team)
	f.Registrants = append(f.Registrants, leader)
	return nil
}

func (f *FakeStore) TeamByJoinCode(ctx context.Context, code string) (*models.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.Teams {
		if t.JoinCode == code {
			return t, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *FakeStore) MemberCount(ctx context.Context, teamID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.Registrants {
		if r.TeamID != nil && *r.TeamID == teamID {
			n++
		}
	}
	return n, nil
}

func (f *FakeStore) AddMember(ctx context.Context, member *models.Registrant) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Registrants = append(f.Registrants, member)
	return nil
}

func (f *FakeStore) RegistrationByCode(ctx context.Context, code string) (*models.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, reg := range f.Registrations {
		if reg.Code == code {
			return reg, nil
		}
	}
	return nil, apperr.ErrNotFound
}
