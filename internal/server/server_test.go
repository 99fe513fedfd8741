package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/qr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/registration"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/session"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/tickets"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/verification"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicketStore struct {
	tickets []*models.SupportTicket
}

func (f *fakeTicketStore) Create(ctx context.Context, t *models.SupportTicket) error {
	f.tickets = append(f.tickets, t)
	return nil
}

func (f *fakeTicketStore) ListAll(ctx context.Context, limit int) ([]models.SupportTicket, error) {
	var out []models.SupportTicket
	for _, t := range f.tickets {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTicketStore) ListForRegistrant(ctx context.Context, id uuid.UUID) ([]models.SupportTicket, error) {
	var out []models.SupportTicket
	for _, t := range f.tickets {
		if t.RegistrantID == id {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTicketStore) Respond(ctx context.Context, id uuid.UUID, response, status string) (*models.SupportTicket, error) {
	for _, t := range f.tickets {
		if t.ID == id {
			t.Response = response
			t.Status = status
			return t, nil
		}
	}
	return nil, apperr.ErrNotFound
}

type fakeDiagStore struct {
	registrants []models.Registrant
	teams       []models.Team
}

func (f *fakeDiagStore) OutboxAfter(ctx context.Context, cursor int64, limit int) ([]models.Outbox, error) {
	return nil, nil
}

func (f *fakeDiagStore) RegistrantByID(ctx context.Context, id uuid.UUID) (*models.Registrant, error) {
	return nil, apperr.ErrNotFound
}

func (f *fakeDiagStore) EarliestRegistrationForRegistrant(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	return nil, apperr.ErrNotFound
}

func (f *fakeDiagStore) EarliestRegistrationForTeam(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	return nil, apperr.ErrNotFound
}

func (f *fakeDiagStore) RecentRegistrants(ctx context.Context, limit int) ([]models.Registrant, error) {
	return f.registrants, nil
}

func (f *fakeDiagStore) RecentTeams(ctx context.Context, limit int) ([]models.Team, error) {
	return f.teams, nil
}

type fixture struct {
	srv      *Server
	router   http.Handler
	regStore *registration.FakeStore
	qrStore  *qr.FakeStore
	verStore *verification.FakeStore
}

type fakeAuthStore struct{}

func (fakeAuthStore) AdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	return nil, apperr.ErrNotFound
}

func (fakeAuthStore) RegistrantByLogin(ctx context.Context, email, rollNo string) (*models.Registrant, error) {
	return nil, apperr.ErrNotFound
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	regStore := &registration.FakeStore{
		Events: []models.Event{
			{ID: 1, Slug: "hackathon", Name: "24h Hackathon", Fee: 500, Open: true},
			{ID: 2, Slug: "ctf", Name: "Capture The Flag", Fee: 300, Open: true},
		},
	}
	qrStore := &qr.FakeStore{Codes: []*models.QRCode{
		{ID: 1, Amount: 800, Active: true, DailyCap: 50, TodayUsage: 7},
	}}
	verStore := &verification.FakeStore{}
	sessions := session.NewManager("test-secret", time.Hour, time.Hour)
	allocator := qr.NewAllocator(qrStore)

	srv := &Server{
		Registrations: registration.NewService(regStore, allocator),
		Verifications: verification.NewService(verStore),
		Tickets:       tickets.NewService(&fakeTicketStore{}),
		Allocator:     allocator,
		Sessions:      sessions,
		Auth:          session.NewAuth(fakeAuthStore{}, sessions),
		Diagnostics:   &fakeDiagStore{},
		CronSecret:    "cron-secret",
		StoreTimeout:  time.Second,
	}
	return &fixture{srv: srv, router: srv.Router(), regStore: regStore, qrStore: qrStore, verStore: verStore}
}

func (f *fixture) do(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) adminCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := f.srv.Sessions.IssueAdmin("admin")
	require.NoError(t, err)
	return &http.Cookie{Name: session.AdminCookie, Value: token}
}

func (f *fixture) studentCookie(t *testing.T, id uuid.UUID) *http.Cookie {
	t.Helper()
	token, err := f.srv.Sessions.IssueStudent(id)
	require.NoError(t, err)
	return &http.Cookie{Name: session.StudentCookie, Value: token}
}

func submitBody() map[string]any {
	return map[string]any{
		"name": "Asha Rao", "email": "asha@college.edu", "phone": "9876543210",
		"roll_no": "1MS22CS001", "events": []string{"hackathon", "ctf"}, "amount": 800,
	}
}

func TestSubmitRegistrationHTTP(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/register", submitBody())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var reg models.Registration
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.Contains(t, reg.Code, "TS26-")
	assert.Equal(t, 8, f.qrStore.Codes[0].TodayUsage)
}

func TestSubmitRegistrationBadBody(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitRegistrationNoCapacity(t *testing.T) {
	f := newFixture(t)
	f.qrStore.Codes[0].TodayUsage = 50
	rec := f.do(t, http.MethodPost, "/api/register", submitBody())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "another payment method")
	assert.Empty(t, f.regStore.Registrations)
}

func TestLookupRegistrationNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/registrations/TS26-MISSIN", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCronResetRequiresBearer(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/cron/reset-qr", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 7, f.qrStore.Codes[0].TodayUsage)

	req := httptest.NewRequest(http.MethodGet, "/cron/reset-qr", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 7, f.qrStore.Codes[0].TodayUsage)
}

func TestCronResetZeroesCounters(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/cron/reset-qr", nil)
	req.Header.Set("Authorization", "Bearer cron-secret")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.qrStore.Codes[0].TodayUsage)
	assert.Contains(t, rec.Body.String(), `"reset":true`)
}

func TestVerifyWithoutSessionIsUnauthorized(t *testing.T) {
	f := newFixture(t)
	reg := &models.Registration{ID: uuid.New(), Code: "TS26-AB12CD", PaymentStatus: models.PaymentPending}
	f.verStore.Registrations = append(f.verStore.Registrations, reg)

	rec := f.do(t, http.MethodPost, "/admin/api/registrations/"+reg.ID.String()+"/verify",
		map[string]string{"decision": "verified"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, models.PaymentPending, reg.PaymentStatus)
}

func TestVerifyFlow(t *testing.T) {
	f := newFixture(t)
	registrant := &models.Registrant{ID: uuid.New(), Status: models.StatusPending}
	reg := &models.Registration{
		ID: uuid.New(), Code: "TS26-AB12CD",
		RegistrantID: registrant.ID, PaymentStatus: models.PaymentPending,
	}
	f.verStore.Registrations = append(f.verStore.Registrations, reg)
	f.verStore.Registrants = append(f.verStore.Registrants, registrant)
	cookie := f.adminCookie(t)

	rec := f.do(t, http.MethodPost, "/admin/api/registrations/"+reg.ID.String()+"/verify",
		map[string]string{"decision": "verified", "notes": "UTR checked"}, cookie)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.StatusApproved, registrant.Status)

	// terminal: a second decision conflicts
	rec = f.do(t, http.MethodPost, "/admin/api/registrations/"+reg.ID.String()+"/verify",
		map[string]string{"decision": "rejected"}, cookie)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestVerifyUnknownRegistration(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/admin/api/registrations/"+uuid.NewString()+"/verify",
		map[string]string{"decision": "verified"}, f.adminCookie(t))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteRegistrationHTTP(t *testing.T) {
	f := newFixture(t)
	reg := &models.Registration{ID: uuid.New(), Code: "TS26-AB12CD", PaymentStatus: models.PaymentPending}
	f.verStore.Registrations = append(f.verStore.Registrations, reg)

	rec := f.do(t, http.MethodDelete, "/admin/api/registrations/"+reg.ID.String(), nil, f.adminCookie(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, f.verStore.Registrations)
}

func TestTicketsRequireStudentSession(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/tickets",
		map[string]string{"issue_type": "payment", "description": "help"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTicketLifecycleHTTP(t *testing.T) {
	f := newFixture(t)
	studentID := uuid.New()
	student := f.studentCookie(t, studentID)

	rec := f.do(t, http.MethodPost, "/api/tickets",
		map[string]string{"issue_type": "payment", "description": "QR page does not load"}, student)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var ticket models.SupportTicket
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ticket))

	rec = f.do(t, http.MethodGet, "/api/tickets", nil, student)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ticket.ID.String())

	admin := f.adminCookie(t)
	rec = f.do(t, http.MethodPost, "/admin/api/tickets/"+ticket.ID.String()+"/respond",
		map[string]string{"response": "resolved, retry now", "status": "resolved"}, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"resolved"`)
}

func TestDiagnosticsRecent(t *testing.T) {
	f := newFixture(t)
	f.srv.Diagnostics = &fakeDiagStore{
		registrants: []models.Registrant{{ID: uuid.New(), Name: "Asha Rao", Email: "a@x.edu"}},
	}
	f.router = f.srv.Router()

	rec := f.do(t, http.MethodGet, "/admin/api/diagnostics/recent", nil, f.adminCookie(t))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Asha Rao")
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
