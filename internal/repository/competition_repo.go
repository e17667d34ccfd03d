package repository

import (
	"context"
	"time"

	"github.com/Eursukkul/competition-portal/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompetitionFilter struct {
	City string
	// From drops competitions held before this date.
	From time.Time
	// OpenOn keeps only competitions still taking registrations on this date.
	OpenOn time.Time
	Limit  int
}

type CompetitionRepository interface {
	Create(ctx context.Context, competition *models.Competition) error
	Update(ctx context.Context, competition *models.Competition) error
	FindByID(ctx context.Context, id uint) (*models.Competition, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Competition, error)
	FindAll(ctx context.Context, filter CompetitionFilter) ([]models.Competition, error)
}

type competitionRepository struct {
	db *gorm.DB
}

func NewCompetitionRepository(db *gorm.DB) CompetitionRepository {
	return &competitionRepository{db: db}
}

func (r *competitionRepository) Create(ctx context.Context, competition *models.Competition) error {
	return r.db.WithContext(ctx).Create(competition).Error
}

// Update overwrites every column of an existing competition and replaces
// the files of any slot that was uploaded again.
func (r *competitionRepository) Update(ctx context.Context, competition *models.Competition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Competition{ID: competition.ID}).
			Select("*").
			Omit("id", "created_at", "Attachments").
			Updates(competition)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return replaceAttachments(ctx, tx, ownerCompetitions, competition.ID, competition.Attachments)
	})
}

func (r *competitionRepository) FindByID(ctx context.Context, id uint) (*models.Competition, error) {
	var competition models.Competition
	if err := r.db.WithContext(ctx).Preload("Attachments").First(&competition, id).Error; err != nil {
		return nil, err
	}
	return &competition, nil
}

// FindByIDForUpdate acquires a row-level lock on the competition within the given transaction.
func (r *competitionRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Competition, error) {
	var competition models.Competition
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		First(&competition, id).Error; err != nil {
		return nil, err
	}
	return &competition, nil
}

func (r *competitionRepository) FindAll(ctx context.Context, filter CompetitionFilter) ([]models.Competition, error) {
	var competitions []models.Competition
	q := r.db.WithContext(ctx)
	if filter.City != "" {
		q = q.Where("city = ?", filter.City)
	}
	if !filter.From.IsZero() {
		q = q.Where("event_date >= ?", filter.From)
	}
	if !filter.OpenOn.IsZero() {
		q = q.Where("registration_deadline >= ?", filter.OpenOn)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if err := q.Order("event_date ASC, id ASC").Find(&competitions).Error; err != nil {
		return nil, err
	}
	return competitions, nil
}
