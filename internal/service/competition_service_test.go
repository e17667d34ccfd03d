package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Eursukkul/competition-portal/internal/models"
	"github.com/Eursukkul/competition-portal/internal/repository"
	"github.com/Eursukkul/competition-portal/pkg/rabbitmq"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// --- Mock CompetitionRepository ---

type mockCompetitionRepo struct {
	createFn   func(ctx context.Context, c *models.Competition) error
	updateFn   func(ctx context.Context, c *models.Competition) error
	findByIDFn func(ctx context.Context, id uint) (*models.Competition, error)
	findAllFn  func(ctx context.Context, f repository.CompetitionFilter) ([]models.Competition, error)
}

func (m *mockCompetitionRepo) Create(ctx context.Context, c *models.Competition) error {
	return m.createFn(ctx, c)
}
func (m *mockCompetitionRepo) Update(ctx context.Context, c *models.Competition) error {
	return m.updateFn(ctx, c)
}
func (m *mockCompetitionRepo) FindByID(ctx context.Context, id uint) (*models.Competition, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockCompetitionRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Competition, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockCompetitionRepo) FindAll(ctx context.Context, f repository.CompetitionFilter) ([]models.Competition, error) {
	return m.findAllFn(ctx, f)
}

// --- Recording publisher ---

type published struct {
	key     string
	payload any
}

type recordingPublisher struct {
	sent []published
	err  error
}

func (p *recordingPublisher) Publish(key string, payload any) error {
	p.sent = append(p.sent, published{key, payload})
	return p.err
}

// --- Tests ---

func sampleCompetition() *models.Competition {
	return &models.Competition{
		Title:                "Spring Cup",
		EventDate:            time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		RegistrationDeadline: time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC),
		Location:             "Central Arena",
		Categories:           []string{"juniors"},
		Fees:                 map[string]int{"individual": 500},
		MaxParticipants:      map[string]int{"individual": 3},
	}
}

func TestCreateCompetition_Success(t *testing.T) {
	repo := &mockCompetitionRepo{
		createFn: func(ctx context.Context, c *models.Competition) error {
			c.ID = 1
			return nil
		},
	}
	pub := &recordingPublisher{}

	svc := NewCompetitionService(repo, pub, nil)
	c := sampleCompetition()

	err := svc.CreateCompetition(context.Background(), c)

	assert.NoError(t, err)
	assert.Equal(t, uint(1), c.ID)
	if assert.Len(t, pub.sent, 1) {
		assert.Equal(t, rabbitmq.KeyCompetitionCreated, pub.sent[0].key)
	}
}

func TestCreateCompetition_NilPublisher(t *testing.T) {
	repo := &mockCompetitionRepo{
		createFn: func(ctx context.Context, c *models.Competition) error { return nil },
	}

	svc := NewCompetitionService(repo, nil, nil) // nil publisher = skip RabbitMQ

	assert.NoError(t, svc.CreateCompetition(context.Background(), sampleCompetition()))
}

func TestCreateCompetition_PublishErrorIsNotFatal(t *testing.T) {
	repo := &mockCompetitionRepo{
		createFn: func(ctx context.Context, c *models.Competition) error { return nil },
	}
	pub := &recordingPublisher{err: errors.New("channel closed")}

	svc := NewCompetitionService(repo, pub, nil)

	assert.NoError(t, svc.CreateCompetition(context.Background(), sampleCompetition()))
	assert.Len(t, pub.sent, 1)
}

func TestCreateCompetition_RepoError(t *testing.T) {
	repo := &mockCompetitionRepo{
		createFn: func(ctx context.Context, c *models.Competition) error {
			return errors.New("db connection failed")
		},
	}
	pub := &recordingPublisher{}

	svc := NewCompetitionService(repo, pub, nil)
	err := svc.CreateCompetition(context.Background(), sampleCompetition())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "db connection failed")
	assert.Empty(t, pub.sent)
}

func TestUpdateCompetition_ReloadsStoredRecord(t *testing.T) {
	stored := sampleCompetition()
	stored.ID = 4
	stored.Attachments = []models.Attachment{{Slot: "regulations", Filename: "rules.pdf"}}

	repo := &mockCompetitionRepo{
		updateFn: func(ctx context.Context, c *models.Competition) error { return nil },
		findByIDFn: func(ctx context.Context, id uint) (*models.Competition, error) {
			assert.Equal(t, uint(4), id)
			return stored, nil
		},
	}
	pub := &recordingPublisher{}

	svc := NewCompetitionService(repo, pub, nil)
	c := sampleCompetition()
	c.ID = 4

	assert.NoError(t, svc.UpdateCompetition(context.Background(), c))
	assert.Len(t, c.Attachments, 1)
	if assert.Len(t, pub.sent, 1) {
		assert.Equal(t, rabbitmq.KeyCompetitionUpdated, pub.sent[0].key)
	}
}

func TestUpdateCompetition_NotFound(t *testing.T) {
	repo := &mockCompetitionRepo{
		updateFn: func(ctx context.Context, c *models.Competition) error { return gorm.ErrRecordNotFound },
	}

	svc := NewCompetitionService(repo, nil, nil)
	err := svc.UpdateCompetition(context.Background(), &models.Competition{ID: 99})

	assert.ErrorIs(t, err, ErrCompetitionNotFound)
}

func TestGetCompetition_NotFound(t *testing.T) {
	repo := &mockCompetitionRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Competition, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	svc := NewCompetitionService(repo, nil, nil)
	c, err := svc.GetCompetition(context.Background(), 999)

	assert.ErrorIs(t, err, ErrCompetitionNotFound)
	assert.Nil(t, c)
}

func TestListCompetitions_PassesFilter(t *testing.T) {
	repo := &mockCompetitionRepo{
		findAllFn: func(ctx context.Context, f repository.CompetitionFilter) ([]models.Competition, error) {
			assert.Equal(t, "Almaty", f.City)
			return []models.Competition{{ID: 1, Title: "A"}, {ID: 2, Title: "B"}}, nil
		},
	}

	svc := NewCompetitionService(repo, nil, nil)
	list, err := svc.ListCompetitions(context.Background(), repository.CompetitionFilter{City: "Almaty"})

	assert.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRegistrationOpen(t *testing.T) {
	c := sampleCompetition()

	assert.True(t, c.RegistrationOpen(time.Date(2025, 5, 15, 23, 0, 0, 0, time.UTC)))
	assert.False(t, c.RegistrationOpen(time.Date(2025, 5, 16, 0, 0, 0, 0, time.UTC)))
}
