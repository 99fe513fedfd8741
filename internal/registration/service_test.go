package registration

import (
	"context"
	"strings"
	"testing"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/qr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(codes ...*models.QRCode) (*Service, *FakeStore, *qr.FakeStore) {
	store := &FakeStore{
		Events: []models.Event{
			{ID: 1, Slug: "hackathon", Name: "24h Hackathon", Fee: 500, Open: true},
			{ID: 2, Slug: "ctf", Name: "Capture The Flag", Fee: 300, Open: true},
			{ID: 3, Slug: "retro-quiz", Name: "Retro Quiz", Fee: 100, Open: false},
		},
	}
	qrStore := &qr.FakeStore{Codes: codes}
	return NewService(store, qr.NewAllocator(qrStore)), store, qrStore
}

func validSubmit() SubmitRequest {
	return SubmitRequest{
		Name:   "Asha Rao",
		Email:  "asha@college.edu",
		Phone:  "9876543210",
		RollNo: "1MS22CS001",
		Events: []string{"hackathon", "ctf"},
		Amount: 800,
	}
}

func TestSubmitCreatesPendingRegistration(t *testing.T) {
	svc, store, qrStore := newService(
		&models.QRCode{ID: 1, Amount: 800, Active: true, DailyCap: 50},
	)

	reg, err := svc.Submit(context.Background(), validSubmit())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(reg.Code, "TS26-"))
	assert.Equal(t, models.PaymentPending, reg.PaymentStatus)
	assert.Equal(t, int64(1), reg.QRCodeID)
	assert.Equal(t, 1, qrStore.Codes[0].TodayUsage)

	require.Len(t, store.Registrants, 1)
	r := store.Registrants[0]
	assert.Equal(t, models.StatusPending, r.Status)
	assert.Equal(t, models.RoleIndividual, r.Role)
	assert.Equal(t, reg.RegistrantID, r.ID)
	// payment proof is never younger than the registrant row
	assert.False(t, store.Registrations[0].CreatedAt.After(r.CreatedAt))
}

func TestSubmitValidation(t *testing.T) {
	svc, store, _ := newService(
		&models.QRCode{ID: 1, Amount: 800, Active: true, DailyCap: 50},
	)

	cases := []struct {
		name   string
		mutate func(*SubmitRequest)
	}{
		{"missing name", func(r *SubmitRequest) { r.Name = " " }},
		{"bad email", func(r *SubmitRequest) { r.Email = "not-an-email" }},
		{"missing phone", func(r *SubmitRequest) { r.Phone = "" }},
		{"missing roll no", func(r *SubmitRequest) { r.RollNo = "" }},
		{"no events", func(r *SubmitRequest) { r.Events = nil }},
		{"unknown event", func(r *SubmitRequest) { r.Events = []string{"chess"} }},
		{"closed event", func(r *SubmitRequest) { r.Events = []string{"retro-quiz"}; r.Amount = 100 }},
		{"amount mismatch", func(r *SubmitRequest) { r.Amount = 500 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validSubmit()
			tc.mutate(&req)
			_, err := svc.Submit(context.Background(), req)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
	// no partial writes from any failed submission
	assert.Empty(t, store.Registrations)
	assert.Empty(t, store.Registrants)
}

func TestSubmitDuplicateEmail(t *testing.T) {
	svc, _, _ := newService(
		&models.QRCode{ID: 1, Amount: 800, Active: true, DailyCap: 50},
	)

	_, err := svc.Submit(context.Background(), validSubmit())
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), validSubmit())
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSubmitNoCapacityLeavesNoPartialWrites(t *testing.T) {
	svc, store, _ := newService(
		&models.QRCode{ID: 1, Amount: 800, Active: true, DailyCap: 10, TodayUsage: 10},
	)

	_, err := svc.Submit(context.Background(), validSubmit())
	assert.ErrorIs(t, err, apperr.ErrNoCapacity)
	assert.Empty(t, store.Registrations)
	assert.Empty(t, store.Registrants)
}

func TestLookup(t *testing.T) {
	svc, _, _ := newService(
		&models.QRCode{ID: 1, Amount: 800, Active: true, DailyCap: 50},
	)

	reg, err := svc.Submit(context.Background(), validSubmit())
	require.NoError(t, err)

	got, err := svc.Lookup(context.Background(), reg.Code)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, got.ID)

	_, err = svc.Lookup(context.Background(), "TS26-NOPE00")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
