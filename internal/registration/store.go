package registration

import (
	"context"
	"errors"
	"fmt"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/apperr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/models"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/outbox"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is the persistence surface for the registration workflow. Writes
// that span multiple rows happen in one transaction, payment-proof row
// first, so no paid-adjacent registrant row can ever exist without one.
type Store interface {
	EventsBySlug(ctx context.Context, slugs []string) ([]models.Event, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	CreateIndividual(ctx context.Context, reg *models.Registration, r *models.Registrant) error
	CreateTeam(ctx context.Context, reg *models.Registration, team *models.Team, leader *models.Registrant) error
	TeamByJoinCode(ctx context.Context, code string) (*models.Team, error)
	MemberCount(ctx context.Context, teamID uuid.UUID) (int64, error)
	AddMember(ctx context.Context, member *models.Registrant) error
	RegistrationByCode(ctx context.Context, code string) (*models.Registration, error)
}

type GormStore struct {
	DB *gorm.DB
}

func (s *GormStore) EventsBySlug(ctx context.Context, slugs []string) ([]models.Event, error) {
	var events []models.Event
	if err := s.DB.WithContext(ctx).Where("slug IN ?", slugs).Find(&events).Error; err != nil {
		return nil, fmt.Errorf("fetch events: %v: %w", err, apperr.ErrStore)
	}
	return events, nil
}

func (s *GormStore) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Registrant{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check email %s: %v: %w", email, err, apperr.ErrStore)
	}
	return count > 0, nil
}

// CreateIndividual persists the payment proof and the registrant together.
// Insert order matters for the ordering invariant the monitor checks:
// registration first, registrant second.
func (s *GormStore) CreateIndividual(ctx context.Context, reg *models.Registration, r *models.Registrant) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reg).Error; err != nil {
			return err
		}
		if err := tx.Create(r).Error; err != nil {
			return err
		}
		if err := outbox.Add(tx, models.EntityRegistration, reg.ID, models.OpUpsert, reg); err != nil {
			return err
		}
		return outbox.Add(tx, models.EntityRegistrant, r.ID, models.OpUpsert, r)
	})
	if err != nil {
		return fmt.Errorf("create registration %s: %v: %w", reg.Code, err, apperr.ErrStore)
	}
	return nil
}

func (s *GormStore) CreateTeam(ctx context.Context, reg *models.Registration, team *models.Team, leader *models.Registrant) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reg).Error; err != nil {
			return err
		}
		if err := tx.Create(team).Error; err != nil {
			return err
		}
		if err := tx.Create(leader).Error; err != nil {
			return err
		}
		if err := outbox.Add(tx, models.EntityRegistration, reg.ID, models.OpUpsert, reg); err != nil {
			return err
		}
		if err := outbox.Add(tx, models.EntityTeam, team.ID, models.OpUpsert, team); err != nil {
			return err
		}
		return outbox.Add(tx, models.EntityRegistrant, leader.ID, models.OpUpsert, leader)
	})
	if err != nil {
		return fmt.Errorf("create team registration %s: %v: %w", reg.Code, err, apperr.ErrStore)
	}
	return nil
}

func (s *GormStore) TeamByJoinCode(ctx context.Context, code string) (*models.Team, error) {
	var team models.Team
	err := s.DB.WithContext(ctx).First(&team, "join_code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("fetch team by join code: %v: %w", err, apperr.ErrStore)
	}
	return &team, nil
}

func (s *GormStore) MemberCount(ctx context.Context, teamID uuid.UUID) (int64, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Registrant{}).
		Where("team_id = ?", teamID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count members of team %s: %v: %w", teamID, err, apperr.ErrStore)
	}
	return count, nil
}

func (s *GormStore) AddMember(ctx context.Context, member *models.Registrant) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		return outbox.Add(tx, models.EntityRegistrant, member.ID, models.OpUpsert, member)
	})
	if err != nil {
		return fmt.Errorf("add member %s: %v: %w", member.Email, err, apperr.ErrStore)
	}
	return nil
}

func (s *GormStore) RegistrationByCode(ctx context.Context, code string) (*models.Registration, error) {
	var reg models.Registration
	err := s.DB.WithContext(ctx).First(&reg, "code = ?", code).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("fetch registration %s: %v: %w", code, err, apperr.ErrStore)
	}
	return &reg, nil
}
