package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/Eursukkul/competition-portal/internal/draft"
	"github.com/Eursukkul/competition-portal/internal/models"
	"github.com/Eursukkul/competition-portal/internal/service"
	"github.com/Eursukkul/competition-portal/pkg/attachment"
	"github.com/Eursukkul/competition-portal/pkg/validation"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registrationDraft(dob draft.Date) *draft.Registration {
	r := draft.NewRegistration()
	r.SetCompetition(1)
	r.SetFirstName("Aru")
	r.SetLastName("Sak")
	r.SetDateOfBirth(dob)
	r.SetEmail("aru@example.com")
	r.SetClub("Falcons")
	r.ToggleProgram(draft.ProgramPair)
	return r
}

func medical() upload {
	return upload{field: draft.SlotMedicalCertificate, name: "med.pdf", contentType: "application/pdf", size: 1000}
}

func TestCreateRegistration_Handler_Adult(t *testing.T) {
	var stored *models.Registration
	svc := &mockRegistrationService{
		createFn: func(ctx context.Context, r *models.Registration) error {
			r.ID = 11
			stored = r
			return nil
		},
	}

	c, rec := multipartContext(t, http.MethodPost, "/api/v1/registrations", registrationDraft(draft.NewDate(1990, 1, 1)), medical())
	err := NewRegistrationHandler(svc, today).CreateRegistration(c)

	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"pair"}, stored.Programs)
	assert.Equal(t, models.StatusSubmitted, stored.Status)
	require.Len(t, stored.Attachments, 1)
	assert.Equal(t, draft.SlotMedicalCertificate, stored.Attachments[0].Slot)
}

func TestCreateRegistration_Handler_MinorNeedsConsent(t *testing.T) {
	c, _ := multipartContext(t, http.MethodPost, "/api/v1/registrations", registrationDraft(draft.NewDate(2012, 1, 1)), medical())
	err := NewRegistrationHandler(&mockRegistrationService{}, today).CreateRegistration(c)

	var f validation.Failures
	require.ErrorAs(t, err, &f)
	assert.Equal(t, []string{draft.SlotParentalConsent, "guardian.name", "guardian.phone"}, f.Fields())
}

func TestCreateRegistration_Handler_PhotoTooLarge(t *testing.T) {
	c, _ := multipartContext(t, http.MethodPost, "/api/v1/registrations", registrationDraft(draft.NewDate(1990, 1, 1)),
		medical(),
		upload{field: draft.SlotPhoto, name: "me.jpg", contentType: "image/jpeg", size: int(3 * attachment.MiB)},
	)
	err := NewRegistrationHandler(&mockRegistrationService{}, today).CreateRegistration(c)

	assert.ErrorIs(t, err, attachment.ErrTooLarge)
}

func TestCreateRegistration_Handler_ServiceErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrCompetitionNotFound, http.StatusNotFound},
		{service.ErrRegistrationClosed, http.StatusBadRequest},
		{fmt.Errorf("%w: team", service.ErrProgramNotOffered), http.StatusBadRequest},
		{service.ErrAlreadyRegistered, http.StatusConflict},
		{fmt.Errorf("%w: pair", service.ErrProgramFull), http.StatusConflict},
		{fmt.Errorf("tx aborted"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			svc := &mockRegistrationService{
				createFn: func(ctx context.Context, r *models.Registration) error { return tc.err },
			}

			c, _ := multipartContext(t, http.MethodPost, "/api/v1/registrations", registrationDraft(draft.NewDate(1990, 1, 1)), medical())
			err := NewRegistrationHandler(svc, today).CreateRegistration(c)

			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tc.code, he.Code)
		})
	}
}

func TestGetRegistration_Handler(t *testing.T) {
	svc := &mockRegistrationService{
		getFn: func(ctx context.Context, id uint) (*models.Registration, error) {
			if id != 4 {
				return nil, service.ErrRegistrationNotFound
			}
			return &models.Registration{ID: 4, FirstName: "Aru", Status: models.StatusSubmitted}, nil
		},
	}
	h := NewRegistrationHandler(svc, today)

	c, rec := jsonContext(t, http.MethodGet, "/api/v1/registrations/4", nil)
	require.NoError(t, h.GetRegistration(withID(c, "4")))
	assert.Contains(t, rec.Body.String(), `"first_name":"Aru"`)
	assert.Contains(t, rec.Body.String(), `"status":"submitted"`)

	c, _ = jsonContext(t, http.MethodGet, "/api/v1/registrations/5", nil)
	var he *echo.HTTPError
	require.ErrorAs(t, h.GetRegistration(withID(c, "5")), &he)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestWithdrawRegistration_Handler(t *testing.T) {
	svc := &mockRegistrationService{
		withdrawFn: func(ctx context.Context, id uint) (*models.Registration, error) {
			switch id {
			case 5:
				return &models.Registration{ID: 5, CompetitionID: 1, Programs: []string{"pair"}, Status: models.StatusWithdrawn}, nil
			case 6:
				return nil, service.ErrAlreadyWithdrawn
			}
			return nil, service.ErrRegistrationNotFound
		},
	}
	h := NewRegistrationHandler(svc, today)

	c, rec := jsonContext(t, http.MethodDelete, "/api/v1/registrations/5", nil)
	require.NoError(t, h.WithdrawRegistration(withID(c, "5")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"withdrawn"`)

	for id, code := range map[string]int{"6": http.StatusConflict, "7": http.StatusNotFound, "x": http.StatusBadRequest} {
		c, _ := jsonContext(t, http.MethodDelete, "/api/v1/registrations/"+id, nil)
		var he *echo.HTTPError
		require.ErrorAs(t, h.WithdrawRegistration(withID(c, id)), &he)
		assert.Equal(t, code, he.Code, id)
	}
}
