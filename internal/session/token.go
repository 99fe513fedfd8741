// Package session issues and validates the signed cookies that gate the
// student and admin areas. Tokens are HS256 JWTs checked for signature and
// expiry on every protected request; presence alone is never trusted.
package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	AdminCookie   = "admin_session"
	StudentCookie = "student_session"

	audienceAdmin   = "admin"
	audienceStudent = "student"
)

type Manager struct {
	secret     []byte
	studentTTL time.Duration
	adminTTL   time.Duration
}

func NewManager(secret string, studentTTL, adminTTL time.Duration) *Manager {
	return &Manager{secret: []byte(secret), studentTTL: studentTTL, adminTTL: adminTTL}
}

// IssueAdmin returns a signed admin session token for the given username.
func (m *Manager) IssueAdmin(username string) (string, error) {
	return m.issue(username, audienceAdmin, m.adminTTL)
}

// IssueStudent returns a signed student session token for a registrant.
func (m *Manager) IssueStudent(registrantID uuid.UUID) (string, error) {
	return m.issue(registrantID.String(), audienceStudent, m.studentTTL)
}

func (m *Manager) issue(subject, audience string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Audience:  jwt.ClaimStrings{audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ParseAdmin validates an admin token and returns the admin username.
func (m *Manager) ParseAdmin(token string) (string, error) {
	return m.parse(token, audienceAdmin)
}

// ParseStudent validates a student token and returns the registrant id.
func (m *Manager) ParseStudent(token string) (uuid.UUID, error) {
	sub, err := m.parse(token, audienceStudent)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed subject: %w", apperr.ErrUnauthorized)
	}
	return id, nil
}

func (m *Manager) parse(tokenStr, audience string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", apperr.ErrUnauthorized)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", fmt.Errorf("invalid claims: %w", apperr.ErrUnauthorized)
	}
	aud, _ := claims.GetAudience()
	if len(aud) != 1 || aud[0] != audience {
		return "", fmt.Errorf("wrong audience: %w", apperr.ErrUnauthorized)
	}
	return claims.Subject, nil
}

// AdminFromRequest extracts and validates the admin session cookie.
func (m *Manager) AdminFromRequest(r *http.Request) (string, error) {
	c, err := r.Cookie(AdminCookie)
	if err != nil {
		return "", fmt.Errorf("no admin session: %w", apperr.ErrUnauthorized)
	}
	return m.ParseAdmin(c.Value)
}

// StudentFromRequest extracts and validates the student session cookie.
func (m *Manager) StudentFromRequest(r *http.Request) (uuid.UUID, error) {
	c, err := r.Cookie(StudentCookie)
	if err != nil {
		return uuid.Nil, fmt.Errorf("no student session: %w", apperr.ErrUnauthorized)
	}
	return m.ParseStudent(c.Value)
}
