package repository

import (
	"context"
	"encoding/json"

	"github.com/Eursukkul/competition-portal/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RegistrationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, registration *models.Registration) error
	FindByID(ctx context.Context, id uint) (*models.Registration, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error)
	FindByCompetitionID(ctx context.Context, competitionID uint, status *models.RegistrationStatus) ([]models.Registration, error)
	FindActiveByEmail(ctx context.Context, tx *gorm.DB, competitionID uint, email string) (*models.Registration, error)
	CountByProgram(ctx context.Context, tx *gorm.DB, competitionID uint, program string) (int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, registrationID uint, status models.RegistrationStatus) error
	GetDB() *gorm.DB
}

type registrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) RegistrationRepository {
	return &registrationRepository{db: db}
}

func (r *registrationRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *registrationRepository) Create(ctx context.Context, tx *gorm.DB, registration *models.Registration) error {
	return tx.WithContext(ctx).Create(registration).Error
}

func (r *registrationRepository) FindByID(ctx context.Context, id uint) (*models.Registration, error) {
	var registration models.Registration
	if err := r.db.WithContext(ctx).Preload("Attachments").First(&registration, id).Error; err != nil {
		return nil, err
	}
	return &registration, nil
}

// FindByIDForUpdate locks the registration row within tx.
func (r *registrationRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Registration, error) {
	var registration models.Registration
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&registration, id).Error; err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).Where("owner_type = ? AND owner_id = ?", ownerRegistrations, id).
		Find(&registration.Attachments).Error; err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *registrationRepository) FindByCompetitionID(ctx context.Context, competitionID uint, status *models.RegistrationStatus) ([]models.Registration, error) {
	var registrations []models.Registration
	q := r.db.WithContext(ctx).Where("competition_id = ?", competitionID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("id ASC").Find(&registrations).Error; err != nil {
		return nil, err
	}
	return registrations, nil
}

func (r *registrationRepository) FindActiveByEmail(ctx context.Context, tx *gorm.DB, competitionID uint, email string) (*models.Registration, error) {
	var registration models.Registration
	err := tx.WithContext(ctx).
		Where("competition_id = ? AND LOWER(email) = LOWER(?) AND status <> ?", competitionID, email, models.StatusWithdrawn).
		First(&registration).Error
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

// CountByProgram counts active entries that include program.
func (r *registrationRepository) CountByProgram(ctx context.Context, tx *gorm.DB, competitionID uint, program string) (int64, error) {
	needle, err := json.Marshal([]string{program})
	if err != nil {
		return 0, err
	}
	var count int64
	err = tx.WithContext(ctx).
		Model(&models.Registration{}).
		Where("competition_id = ? AND status <> ? AND programs @> ?::jsonb", competitionID, models.StatusWithdrawn, string(needle)).
		Count(&count).Error
	return count, err
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, registrationID uint, status models.RegistrationStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Registration{}).
		Where("id = ?", registrationID).
		Update("status", status).Error
}
