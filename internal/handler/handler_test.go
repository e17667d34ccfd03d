package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/Eursukkul/competition-portal/internal/draft"
	"github.com/Eursukkul/competition-portal/internal/middleware"
	"github.com/Eursukkul/competition-portal/internal/models"
	"github.com/Eursukkul/competition-portal/internal/repository"
	"github.com/Eursukkul/competition-portal/pkg/clock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

var today = clock.Fixed(clock.Date(2025, 3, 1))

// --- Mock services ---

type mockCompetitionService struct {
	createFn func(ctx context.Context, c *models.Competition) error
	updateFn func(ctx context.Context, c *models.Competition) error
	getFn    func(ctx context.Context, id uint) (*models.Competition, error)
	listFn   func(ctx context.Context, f repository.CompetitionFilter) ([]models.Competition, error)
}

func (m *mockCompetitionService) CreateCompetition(ctx context.Context, c *models.Competition) error {
	return m.createFn(ctx, c)
}
func (m *mockCompetitionService) UpdateCompetition(ctx context.Context, c *models.Competition) error {
	return m.updateFn(ctx, c)
}
func (m *mockCompetitionService) GetCompetition(ctx context.Context, id uint) (*models.Competition, error) {
	return m.getFn(ctx, id)
}
func (m *mockCompetitionService) ListCompetitions(ctx context.Context, f repository.CompetitionFilter) ([]models.Competition, error) {
	return m.listFn(ctx, f)
}

type mockRegistrationService struct {
	createFn   func(ctx context.Context, r *models.Registration) error
	withdrawFn func(ctx context.Context, id uint) (*models.Registration, error)
	getFn      func(ctx context.Context, id uint) (*models.Registration, error)
	listFn     func(ctx context.Context, competitionID uint, status *models.RegistrationStatus) ([]models.Registration, error)
}

func (m *mockRegistrationService) CreateRegistration(ctx context.Context, r *models.Registration) error {
	return m.createFn(ctx, r)
}
func (m *mockRegistrationService) WithdrawRegistration(ctx context.Context, id uint) (*models.Registration, error) {
	return m.withdrawFn(ctx, id)
}
func (m *mockRegistrationService) GetRegistration(ctx context.Context, id uint) (*models.Registration, error) {
	return m.getFn(ctx, id)
}
func (m *mockRegistrationService) ListRegistrations(ctx context.Context, competitionID uint, status *models.RegistrationStatus) ([]models.Registration, error) {
	return m.listFn(ctx, competitionID, status)
}

type mockProfileService struct {
	saveDraftFn func(ctx context.Context, id string, p *draft.Profile) error
	loadDraftFn func(ctx context.Context, id string) (*draft.Profile, error)
	publishFn   func(ctx context.Context, p *models.Profile) error
	getFn       func(ctx context.Context, id string) (*models.Profile, error)
}

func (m *mockProfileService) SaveDraft(ctx context.Context, id string, p *draft.Profile) error {
	return m.saveDraftFn(ctx, id, p)
}
func (m *mockProfileService) LoadDraft(ctx context.Context, id string) (*draft.Profile, error) {
	return m.loadDraftFn(ctx, id)
}
func (m *mockProfileService) PublishProfile(ctx context.Context, p *models.Profile) error {
	return m.publishFn(ctx, p)
}
func (m *mockProfileService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	return m.getFn(ctx, id)
}

// --- Request helpers ---

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = middleware.NewValidator()
	return e
}

func jsonContext(t *testing.T, method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, target, bytes.NewReader(b))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return newEcho().NewContext(req, rec), rec
}

type upload struct {
	field, name, contentType string
	size                     int
}

func multipartContext(t *testing.T, method, target string, record any, files ...upload) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	b, err := json.Marshal(record)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("record", string(b)))

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(make([]byte, f.size))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	return newEcho().NewContext(req, rec), rec
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}
