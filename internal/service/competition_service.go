package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Eursukkul/competition-portal/internal/dto"
	"github.com/Eursukkul/competition-portal/internal/models"
	"github.com/Eursukkul/competition-portal/internal/repository"
	"github.com/Eursukkul/competition-portal/pkg/rabbitmq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CompetitionService interface {
	CreateCompetition(ctx context.Context, competition *models.Competition) error
	UpdateCompetition(ctx context.Context, competition *models.Competition) error
	GetCompetition(ctx context.Context, id uint) (*models.Competition, error)
	ListCompetitions(ctx context.Context, filter repository.CompetitionFilter) ([]models.Competition, error)
}

type competitionService struct {
	repo      repository.CompetitionRepository
	publisher Publisher
	logger    *zap.Logger
}

func NewCompetitionService(repo repository.CompetitionRepository, publisher Publisher, logger *zap.Logger) CompetitionService {
	return &competitionService{repo: repo, publisher: publisher, logger: orNop(logger)}
}

func (s *competitionService) CreateCompetition(ctx context.Context, competition *models.Competition) error {
	if err := s.repo.Create(ctx, competition); err != nil {
		return fmt.Errorf("create competition: %w", err)
	}

	// wizard-api keeps its catalog of open competitions from these
	publish(s.publisher, s.logger, rabbitmq.KeyCompetitionCreated, dto.ToCompetitionResponse(competition))
	return nil
}

func (s *competitionService) UpdateCompetition(ctx context.Context, competition *models.Competition) error {
	if err := s.repo.Update(ctx, competition); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCompetitionNotFound
		}
		return fmt.Errorf("update competition: %w", err)
	}

	stored, err := s.repo.FindByID(ctx, competition.ID)
	if err != nil {
		return fmt.Errorf("reload competition: %w", err)
	}
	*competition = *stored

	publish(s.publisher, s.logger, rabbitmq.KeyCompetitionUpdated, dto.ToCompetitionResponse(competition))
	return nil
}

func (s *competitionService) GetCompetition(ctx context.Context, id uint) (*models.Competition, error) {
	competition, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCompetitionNotFound
	}
	return competition, err
}

func (s *competitionService) ListCompetitions(ctx context.Context, filter repository.CompetitionFilter) ([]models.Competition, error) {
	return s.repo.FindAll(ctx, filter)
}
