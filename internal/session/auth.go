package session

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthStore looks up the credentials the login endpoints check against.
type AuthStore interface {
	AdminByUsername(ctx context.Context, username string) (*models.Admin, error)
	RegistrantByLogin(ctx context.Context, email, rollNo string) (*models.Registrant, error)
}

type GormAuthStore struct {
	DB *gorm.DB
}

func (s *GormAuthStore) AdminByUsername(ctx context.Context, username string) (*models.Admin, error) {
	var admin models.Admin
	err := s.DB.WithContext(ctx).First(&admin, "username = ?", username).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("fetch admin %s: %v: %w", username, err, apperr.ErrStore)
	}
	return &admin, nil
}

func (s *GormAuthStore) RegistrantByLogin(ctx context.Context, email, rollNo string) (*models.Registrant, error) {
	var r models.Registrant
	err := s.DB.WithContext(ctx).First(&r, "email = ? AND roll_no = ?", email, rollNo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("fetch registrant %s: %v: %w", email, err, apperr.ErrStore)
	}
	return &r, nil
}

// Auth performs logins and hands out session tokens.
type Auth struct {
	store AuthStore
	mgr   *Manager
}

func NewAuth(store AuthStore, mgr *Manager) *Auth {
	return &Auth{store: store, mgr: mgr}
}

// AdminLogin checks the bcrypt credential and returns a signed admin token.
// Lookup misses and bad passwords are indistinguishable to the caller.
func (a *Auth) AdminLogin(ctx context.Context, username, password string) (string, error) {
	admin, err := a.store.AdminByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", fmt.Errorf("bad credentials: %w", apperr.ErrUnauthorized)
		}
		return "", err
	}
	if !admin.Active {
		return "", fmt.Errorf("admin disabled: %w", apperr.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return "", fmt.Errorf("bad credentials: %w", apperr.ErrUnauthorized)
	}
	log.Printf("admin %s logged in", username)
	return a.mgr.IssueAdmin(username)
}

// StudentLogin matches a registrant by email and roll number and returns a
// signed student token.
func (a *Auth) StudentLogin(ctx context.Context, email, rollNo string) (string, error) {
	r, err := a.store.RegistrantByLogin(ctx, email, rollNo)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", fmt.Errorf("bad credentials: %w", apperr.ErrUnauthorized)
		}
		return "", err
	}
	return a.mgr.IssueStudent(r.ID)
}
