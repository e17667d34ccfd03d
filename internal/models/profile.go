package models

import "time"

// Profile is a published coach or judge profile. ExternalID is the id the
// client chose when the draft was started.
type Profile struct {
	ID              uint      `gorm:"primaryKey" json:"-"`
	ExternalID      string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"id"`
	Role            string    `gorm:"type:varchar(20);not null" json:"role"`
	FullName        string    `gorm:"not null" json:"full_name"`
	Email           string    `gorm:"not null" json:"email"`
	Phone           string    `json:"phone"`
	LicenseNumber   string    `json:"license_number"`
	ExperienceYears int       `json:"experience_years"`
	Categories      []string  `gorm:"type:jsonb;serializer:json" json:"categories"`
	Bio             string    `json:"bio"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Attachments []Attachment `gorm:"polymorphic:Owner" json:"attachments,omitempty"`
}
