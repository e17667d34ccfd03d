package dto

import (
	"encoding/json"
	"time"

	"github.com/Eursukkul/competition-portal/internal/draft"
	"github.com/Eursukkul/competition-portal/internal/models"
	"github.com/Eursukkul/competition-portal/pkg/validation"
	"github.com/Eursukkul/competition-portal/pkg/wizard"
)

// Records are returned in the same shape the wizards submit, so an edit
// session can be hydrated straight from a GET.

type AttachmentResponse struct {
	Slot        string `json:"slot"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type CompetitionResponse struct {
	draft.Competition
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

type RegistrationResponse struct {
	draft.Registration
	Status      models.RegistrationStatus `json:"status"`
	Attachments []AttachmentResponse      `json:"attachments"`
	CreatedAt   time.Time                 `json:"created_at"`
}

type ProfileResponse struct {
	draft.Profile
	Attachments []AttachmentResponse `json:"attachments"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// WizardResponse is a wizard session as seen by its client.
type WizardResponse struct {
	ID       string              `json:"id"`
	Kind     string              `json:"kind"`
	View     wizard.View         `json:"view"`
	Draft    json.RawMessage     `json:"draft"`
	Failures validation.Failures `json:"failures,omitempty"`
}

type SubmitResponse struct {
	WizardResponse
	Status int             `json:"status"`
	Record json.RawMessage `json:"record,omitempty"`
}

type ErrorResponse struct {
	Message  string              `json:"message"`
	Failures validation.Failures `json:"failures,omitempty"`
}

func ToCompetitionResponse(m *models.Competition) CompetitionResponse {
	return CompetitionResponse{
		Competition: *CompetitionDraft(m),
		Attachments: toAttachmentResponses(m.Attachments),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func ToRegistrationResponse(m *models.Registration) RegistrationResponse {
	return RegistrationResponse{
		Registration: *RegistrationDraft(m),
		Status:       m.Status,
		Attachments:  toAttachmentResponses(m.Attachments),
		CreatedAt:    m.CreatedAt,
	}
}

func ToProfileResponse(m *models.Profile) ProfileResponse {
	return ProfileResponse{
		Profile:     *ProfileDraft(m),
		Attachments: toAttachmentResponses(m.Attachments),
		UpdatedAt:   m.UpdatedAt,
	}
}

func toAttachmentResponses(in []models.Attachment) []AttachmentResponse {
	out := make([]AttachmentResponse, len(in))
	for i, a := range in {
		out[i] = AttachmentResponse{
			Slot:        a.Slot,
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Size:        a.Size,
		}
	}
	return out
}
