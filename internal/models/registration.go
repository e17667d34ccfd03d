package models

import "time"

type RegistrationStatus string

const (
	StatusSubmitted RegistrationStatus = "submitted"
	StatusWithdrawn RegistrationStatus = "withdrawn"
)

type Registration struct {
	ID            uint               `gorm:"primaryKey" json:"id"`
	CompetitionID uint               `gorm:"not null;index" json:"competition_id"`
	FirstName     string             `gorm:"not null" json:"first_name"`
	LastName      string             `gorm:"not null" json:"last_name"`
	DateOfBirth   time.Time          `gorm:"type:date;not null" json:"date_of_birth"`
	Email         string             `gorm:"not null" json:"email"`
	Phone         string             `json:"phone"`
	Club          string             `json:"club"`
	Programs      []string           `gorm:"type:jsonb;serializer:json" json:"programs"`
	GuardianName  string             `json:"guardian_name"`
	GuardianPhone string             `json:"guardian_phone"`
	Status        RegistrationStatus `gorm:"type:varchar(20);not null;default:'submitted'" json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`

	Competition *Competition `gorm:"foreignKey:CompetitionID" json:"competition,omitempty"`
	Attachments []Attachment `gorm:"polymorphic:Owner" json:"attachments,omitempty"`
}

func (r *Registration) HasProgram(p string) bool {
	for _, v := range r.Programs {
		if v == p {
			return true
		}
	}
	return false
}
