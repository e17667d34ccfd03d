package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Eursukkul/competition-portal/internal/dto"
	"github.com/Eursukkul/competition-portal/internal/models"
	"github.com/Eursukkul/competition-portal/internal/repository"
	"github.com/Eursukkul/competition-portal/pkg/clock"
	"github.com/Eursukkul/competition-portal/pkg/rabbitmq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type RegistrationService interface {
	CreateRegistration(ctx context.Context, registration *models.Registration) error
	WithdrawRegistration(ctx context.Context, id uint) (*models.Registration, error)
	GetRegistration(ctx context.Context, id uint) (*models.Registration, error)
	ListRegistrations(ctx context.Context, competitionID uint, status *models.RegistrationStatus) ([]models.Registration, error)
}

type registrationService struct {
	registrationRepo repository.RegistrationRepository
	competitionRepo  repository.CompetitionRepository
	publisher        Publisher
	clock            clock.Clock
	logger           *zap.Logger
}

func NewRegistrationService(
	registrationRepo repository.RegistrationRepository,
	competitionRepo repository.CompetitionRepository,
	publisher Publisher,
	clk clock.Clock,
	logger *zap.Logger,
) RegistrationService {
	if clk == nil {
		clk = clock.System()
	}
	return &registrationService{
		registrationRepo: registrationRepo,
		competitionRepo:  competitionRepo,
		publisher:        publisher,
		clock:            clk,
		logger:           orNop(logger),
	}
}

func (s *registrationService) CreateRegistration(ctx context.Context, registration *models.Registration) error {
	err := s.registrationRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the competition row so concurrent entries see each other's counts
		competition, err := s.competitionRepo.FindByIDForUpdate(ctx, tx, registration.CompetitionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCompetitionNotFound
			}
			return err
		}

		if !competition.RegistrationOpen(s.clock.Now()) {
			return ErrRegistrationClosed
		}

		_, err = s.registrationRepo.FindActiveByEmail(ctx, tx, registration.CompetitionID, registration.Email)
		if err == nil {
			return ErrAlreadyRegistered
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		for _, program := range registration.Programs {
			limit := competition.MaxParticipants[program]
			if limit <= 0 {
				return fmt.Errorf("%w: %s", ErrProgramNotOffered, program)
			}
			taken, err := s.registrationRepo.CountByProgram(ctx, tx, registration.CompetitionID, program)
			if err != nil {
				return err
			}
			if int(taken) >= limit {
				return fmt.Errorf("%w: %s", ErrProgramFull, program)
			}
		}

		registration.Status = models.StatusSubmitted
		return s.registrationRepo.Create(ctx, tx, registration)
	})
	if err != nil {
		return err
	}

	publish(s.publisher, s.logger, rabbitmq.KeyRegistrationSubmitted, dto.ToRegistrationResponse(registration))
	return nil
}

// WithdrawRegistration releases the athlete's program places. The
// registration row is locked before its status is read, so concurrent
// withdrawals of one entry succeed once. The competition row is locked so
// the freed places are seen by the next entry.
func (s *registrationService) WithdrawRegistration(ctx context.Context, id uint) (*models.Registration, error) {
	var result *models.Registration

	err := s.registrationRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		registration, err := s.registrationRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRegistrationNotFound
			}
			return err
		}
		if registration.Status == models.StatusWithdrawn {
			return ErrAlreadyWithdrawn
		}

		if _, err := s.competitionRepo.FindByIDForUpdate(ctx, tx, registration.CompetitionID); err != nil {
			return err
		}
		if err := s.registrationRepo.UpdateStatus(ctx, tx, id, models.StatusWithdrawn); err != nil {
			return err
		}

		registration.Status = models.StatusWithdrawn
		result = registration
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(s.publisher, s.logger, rabbitmq.KeyRegistrationWithdrawn, dto.ToRegistrationResponse(result))
	return result, nil
}

func (s *registrationService) GetRegistration(ctx context.Context, id uint) (*models.Registration, error) {
	registration, err := s.registrationRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRegistrationNotFound
	}
	return registration, err
}

func (s *registrationService) ListRegistrations(ctx context.Context, competitionID uint, status *models.RegistrationStatus) ([]models.Registration, error) {
	return s.registrationRepo.FindByCompetitionID(ctx, competitionID, status)
}
