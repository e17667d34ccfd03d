package repository

import (
	"context"
	"errors"

	"github.com/Eursukkul/competition-portal/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	// Upsert stores a published profile keyed by its external id.
	Upsert(ctx context.Context, profile *models.Profile) error
	FindByExternalID(ctx context.Context, id string) (*models.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Profile
		err := tx.Where("external_id = ?", profile.ExternalID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(profile).Error
		case err != nil:
			return err
		}

		profile.ID = existing.ID
		profile.CreatedAt = existing.CreatedAt
		if err := tx.Model(&models.Profile{ID: existing.ID}).
			Select("*").
			Omit("id", "external_id", "created_at", "Attachments").
			Updates(profile).Error; err != nil {
			return err
		}
		return replaceAttachments(ctx, tx, ownerProfiles, existing.ID, profile.Attachments)
	})
}

func (r *profileRepository) FindByExternalID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).
		Preload("Attachments").
		Where("external_id = ?", id).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}
