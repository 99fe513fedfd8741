package registration

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/metrics"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"github.com/google/uuid"
)

// TeamRequest carries a team leader's submission. Bulk mode means the leader
// pays for the whole team up front; individual mode means each member pays on
// their own later.
type TeamRequest struct {
	TeamName    string        `json:"team_name"`
	PaymentMode string        `json:"payment_mode"`
	Capacity    int           `json:"capacity"`
	Leader      SubmitRequest `json:"leader"`
}

// MemberRequest carries a member joining an existing team via its join code.
type MemberRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
	RollNo string `json:"roll_no"`
}

// CreateTeam registers a team and its leader. The payment proof is written
// before the team row, so a team can never exist without a payment intent —
// the invariant the leak monitor polices.
func (s *Service) CreateTeam(ctx context.Context, req TeamRequest) (*models.Registration, *models.Team, error) {
	if strings.TrimSpace(req.TeamName) == "" {
		return nil, nil, fmt.Errorf("team name is required: %w", apperr.ErrValidation)
	}
	if req.PaymentMode != models.PayModeBulk && req.PaymentMode != models.PayModeIndividual {
		return nil, nil, fmt.Errorf("payment mode must be bulk or individual: %w", apperr.ErrValidation)
	}
	if req.Capacity < 2 || req.Capacity > 6 {
		return nil, nil, fmt.Errorf("team capacity must be between 2 and 6: %w", apperr.ErrValidation)
	}
	if err := s.validateDetails(ctx, req.Leader.Name, req.Leader.Email, req.Leader.Phone, req.Leader.RollNo); err != nil {
		return nil, nil, err
	}
	fee, err := s.validateEvents(ctx, req.Leader.Events)
	if err != nil {
		return nil, nil, err
	}
	want := fee
	if req.PaymentMode == models.PayModeBulk {
		want = fee * req.Capacity
	}
	if req.Leader.Amount != want {
		return nil, nil, fmt.Errorf("amount %d does not match expected fee %d: %w", req.Leader.Amount, want, apperr.ErrValidation)
	}

	code, err := s.alloc.Allocate(ctx, req.Leader.Amount)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	teamID := uuid.New()
	leaderID := uuid.New()
	reg := &models.Registration{
		ID:            uuid.New(),
		Code:          NewRegistrationCode(),
		RegistrantID:  leaderID,
		TeamID:        &teamID,
		Events:        mustJSON(req.Leader.Events),
		Amount:        req.Leader.Amount,
		QRCodeID:      code.ID,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     now,
	}
	team := &models.Team{
		ID:          teamID,
		Name:        req.TeamName,
		JoinCode:    NewJoinCode(),
		LeaderID:    leaderID,
		PaymentMode: req.PaymentMode,
		Capacity:    req.Capacity,
		Status:      models.TeamPending,
		CreatedAt:   now,
	}
	leader := &models.Registrant{
		ID:        leaderID,
		Name:      req.Leader.Name,
		Email:     strings.ToLower(req.Leader.Email),
		Phone:     req.Leader.Phone,
		RollNo:    req.Leader.RollNo,
		Role:      models.RoleLeader,
		Status:    models.StatusPending,
		TeamID:    &teamID,
		CreatedAt: now,
	}

	if err := s.store.CreateTeam(ctx, reg, team, leader); err != nil {
		return nil, nil, err
	}
	metrics.RegistrationsCreated.Inc()
	log.Printf("team %q registered (%s, join code %s)", team.Name, reg.Code, team.JoinCode)
	return reg, team, nil
}

// JoinTeam adds a member via an invite code. Members are created UNPAID with
// no registration row because the payer is the team leader. This is the one
// sanctioned exception to the proof-before-registrant ordering rule; do not
// "fix" it.
func (s *Service) JoinTeam(ctx context.Context, joinCode string, req MemberRequest) (*models.Registrant, error) {
	if strings.TrimSpace(joinCode) == "" {
		return nil, fmt.Errorf("join code is required: %w", apperr.ErrValidation)
	}
	if err := s.validateDetails(ctx, req.Name, req.Email, req.Phone, req.RollNo); err != nil {
		return nil, err
	}

	team, err := s.store.TeamByJoinCode(ctx, joinCode)
	if err != nil {
		return nil, err
	}
	// leader counts against capacity
	count, err := s.store.MemberCount(ctx, team.ID)
	if err != nil {
		return nil, err
	}
	if count >= int64(team.Capacity) {
		return nil, fmt.Errorf("team %q is full: %w", team.Name, apperr.ErrValidation)
	}

	member := &models.Registrant{
		ID:        uuid.New(),
		Name:      req.Name,
		Email:     strings.ToLower(req.Email),
		Phone:     req.Phone,
		RollNo:    req.RollNo,
		Role:      models.RoleMember,
		Status:    models.StatusUnpaid,
		TeamID:    &team.ID,
		CreatedAt: time.Now(),
	}
	if err := s.store.AddMember(ctx, member); err != nil {
		return nil, err
	}
	log.Printf("member %s joined team %q", member.Email, team.Name)
	return member, nil
}

// NewJoinCode returns an 8-character team invite code.
func NewJoinCode() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(raw[:8])
}
