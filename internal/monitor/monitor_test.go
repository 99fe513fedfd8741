package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRegistrantOrdering(t *testing.T) {
	now := time.Now()
	proof := &models.Registration{Code: "TS26-AAAAAA", CreatedAt: now.Add(-time.Minute)}

	cases := []struct {
		name      string
		r         *models.Registrant
		earliest  *models.Registration
		violation bool
	}{
		{
			"pending with older proof is clean",
			&models.Registrant{Role: models.RoleIndividual, Status: models.StatusPending, CreatedAt: now},
			proof, false,
		},
		{
			"pending with no proof leaks",
			&models.Registrant{Role: models.RoleIndividual, Status: models.StatusPending, CreatedAt: now},
			nil, true,
		},
		{
			"approved with younger proof leaks",
			&models.Registrant{Role: models.RoleLeader, Status: models.StatusApproved, CreatedAt: now.Add(-time.Hour)},
			proof, true,
		},
		{
			"member is exempt even with no proof",
			&models.Registrant{Role: models.RoleMember, Status: models.StatusPending, CreatedAt: now},
			nil, false,
		},
		{
			"unpaid rows are out of scope",
			&models.Registrant{Role: models.RoleIndividual, Status: models.StatusUnpaid, CreatedAt: now},
			nil, false,
		},
		{
			"equal timestamps are clean",
			&models.Registrant{Role: models.RoleIndividual, Status: models.StatusPending, CreatedAt: proof.CreatedAt},
			proof, false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CheckRegistrantOrdering(tc.r, tc.earliest)
			if tc.violation {
				assert.NotEmpty(t, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

type fakeStore struct {
	outbox        []models.Outbox
	registrants   map[uuid.UUID]*models.Registrant
	registrations map[uuid.UUID]*models.Registration // by registrant id
	teamRegs      map[uuid.UUID]*models.Registration // by team id
}

func (f *fakeStore) OutboxAfter(ctx context.Context, cursor int64, limit int) ([]models.Outbox, error) {
	var out []models.Outbox
	for _, e := range f.outbox {
		if e.ID > cursor {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) RegistrantByID(ctx context.Context, id uuid.UUID) (*models.Registrant, error) {
	if r, ok := f.registrants[id]; ok {
		return r, nil
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeStore) EarliestRegistrationForRegistrant(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	if reg, ok := f.registrations[id]; ok {
		return reg, nil
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeStore) EarliestRegistrationForTeam(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	if reg, ok := f.teamRegs[id]; ok {
		return reg, nil
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeStore) RecentRegistrants(ctx context.Context, limit int) ([]models.Registrant, error) {
	return nil, nil
}

func (f *fakeStore) RecentTeams(ctx context.Context, limit int) ([]models.Team, error) {
	return nil, nil
}

func TestScanOnceAdvancesCursor(t *testing.T) {
	leakyID := uuid.New()
	cleanID := uuid.New()
	now := time.Now()

	store := &fakeStore{
		outbox: []models.Outbox{
			{ID: 1, EntityType: models.EntityRegistrant, EntityID: cleanID, Op: models.OpUpsert},
			{ID: 2, EntityType: models.EntityRegistrant, EntityID: leakyID, Op: models.OpUpsert},
		},
		registrants: map[uuid.UUID]*models.Registrant{
			cleanID: {ID: cleanID, Role: models.RoleIndividual, Status: models.StatusPending, CreatedAt: now},
			leakyID: {ID: leakyID, Role: models.RoleIndividual, Status: models.StatusApproved, CreatedAt: now},
		},
		registrations: map[uuid.UUID]*models.Registration{
			cleanID: {Code: "TS26-AAAAAA", CreatedAt: now.Add(-time.Minute)},
		},
	}

	m := New(store)
	require.NoError(t, m.ScanOnce(context.Background()))
	assert.Equal(t, int64(2), m.cursor)

	// a second scan starts past the cursor and sees nothing new
	store.outbox = store.outbox[:0]
	require.NoError(t, m.ScanOnce(context.Background()))
	assert.Equal(t, int64(2), m.cursor)
}
