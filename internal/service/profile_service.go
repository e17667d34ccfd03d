package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Eursukkul/competition-portal/internal/draft"
	"github.com/Eursukkul/competition-portal/internal/dto"
	"github.com/Eursukkul/competition-portal/internal/models"
	"github.com/Eursukkul/competition-portal/internal/repository"
	"github.com/Eursukkul/competition-portal/pkg/rabbitmq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const draftKindProfile = "profile"

type ProfileService interface {
	// SaveDraft stages an in-progress profile. Drafts are not validated.
	SaveDraft(ctx context.Context, id string, profile *draft.Profile) error
	// LoadDraft returns the staged draft, or the published profile when
	// nothing is staged.
	LoadDraft(ctx context.Context, id string) (*draft.Profile, error)
	PublishProfile(ctx context.Context, profile *models.Profile) error
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
}

type profileService struct {
	repo      repository.ProfileRepository
	drafts    repository.DraftStore
	publisher Publisher
	logger    *zap.Logger
}

func NewProfileService(repo repository.ProfileRepository, drafts repository.DraftStore, publisher Publisher, logger *zap.Logger) ProfileService {
	return &profileService{repo: repo, drafts: drafts, publisher: publisher, logger: orNop(logger)}
}

func (s *profileService) SaveDraft(ctx context.Context, id string, profile *draft.Profile) error {
	profile.ID = id
	b, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := s.drafts.Save(ctx, draftKindProfile, id, b); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (s *profileService) LoadDraft(ctx context.Context, id string) (*draft.Profile, error) {
	b, err := s.drafts.Load(ctx, draftKindProfile, id)
	switch {
	case err == nil:
		var p draft.Profile
		if err := json.Unmarshal(b, &p); err != nil {
			return nil, fmt.Errorf("decode draft: %w", err)
		}
		p.ID = id
		return &p, nil
	case !errors.Is(err, repository.ErrDraftNotFound):
		return nil, fmt.Errorf("load draft: %w", err)
	}

	published, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ProfileDraft(published), nil
}

func (s *profileService) PublishProfile(ctx context.Context, profile *models.Profile) error {
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return fmt.Errorf("publish profile: %w", err)
	}

	if err := s.drafts.Delete(ctx, draftKindProfile, profile.ExternalID); err != nil {
		s.logger.Warn("discard draft failed", zap.String("profile", profile.ExternalID), zap.Error(err))
	}

	publish(s.publisher, s.logger, rabbitmq.KeyProfilePublished, dto.ToProfileResponse(profile))
	return nil
}

func (s *profileService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	profile, err := s.repo.FindByExternalID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	return profile, err
}
