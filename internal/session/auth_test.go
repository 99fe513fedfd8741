package session

import (
	"context"
	"testing"
	"time"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeAuthStore struct {
	admins      map[string]*models.Admin
	registrants map[string]*models.Registrant // keyed by email
}

func (f *fakeAuthStore) AdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	if a, ok := f.admins[username]; ok {
		return a, nil
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeAuthStore) RegistrantByLogin(ctx context.Context, email, rollNo string) (*models.Registrant, error) {
	if r, ok := f.registrants[email]; ok && r.RollNo == rollNo {
		return r, nil
	}
	return nil, apperr.ErrNotFound
}

func newAuth(t *testing.T) (*Auth, *Manager, *fakeAuthStore) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	store := &fakeAuthStore{
		admins: map[string]*models.Admin{
			"admin": {ID: 1, Username: "admin", PasswordHash: string(hash), Active: true},
		},
		registrants: map[string]*models.Registrant{
			"asha@college.edu": {ID: uuid.New(), Email: "asha@college.edu", RollNo: "1MS22CS001"},
		},
	}
	mgr := NewManager("test-secret", time.Hour, time.Hour)
	return NewAuth(store, mgr), mgr, store
}

func TestAdminLogin(t *testing.T) {
	auth, mgr, _ := newAuth(t)

	token, err := auth.AdminLogin(context.Background(), "admin", "hunter2")
	require.NoError(t, err)

	username, err := mgr.ParseAdmin(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", username)
}

func TestAdminLoginBadPassword(t *testing.T) {
	auth, _, _ := newAuth(t)
	_, err := auth.AdminLogin(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAdminLoginUnknownUser(t *testing.T) {
	auth, _, _ := newAuth(t)
	_, err := auth.AdminLogin(context.Background(), "ghost", "hunter2")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAdminLoginInactive(t *testing.T) {
	auth, _, store := newAuth(t)
	store.admins["admin"].Active = false
	_, err := auth.AdminLogin(context.Background(), "admin", "hunter2")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestStudentLogin(t *testing.T) {
	auth, mgr, store := newAuth(t)

	token, err := auth.StudentLogin(context.Background(), "asha@college.edu", "1MS22CS001")
	require.NoError(t, err)

	id, err := mgr.ParseStudent(token)
	require.NoError(t, err)
	assert.Equal(t, store.registrants["asha@college.edu"].ID, id)
}

func TestStudentLoginWrongRoll(t *testing.T) {
	auth, _, _ := newAuth(t)
	_, err := auth.StudentLogin(context.Background(), "asha@college.edu", "1MS22CS999")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestStudentTokenIsNotAdminToken(t *testing.T) {
	auth, mgr, _ := newAuth(t)
	token, err := auth.StudentLogin(context.Background(), "asha@college.edu", "1MS22CS001")
	require.NoError(t, err)
	_, err = mgr.ParseAdmin(token)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}
