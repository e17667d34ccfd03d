package models

import "time"

type Competition struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Title                string         `gorm:"not null" json:"title"`
	Description          string         `json:"description"`
	EventDate            time.Time      `gorm:"type:date;not null" json:"event_date"`
	RegistrationDeadline time.Time      `gorm:"type:date;not null" json:"registration_deadline"`
	Location             string         `gorm:"not null" json:"location"`
	City                 string         `json:"city"`
	InsuranceRequired    bool           `gorm:"not null;default:false" json:"insurance_required"`
	ContactName          string         `json:"contact_name"`
	ContactPosition      string         `json:"contact_position"`
	ContactPhone         string         `json:"contact_phone"`
	ContactEmail         string         `json:"contact_email"`
	PaymentBank          string         `json:"payment_bank"`
	PaymentAccount       string         `json:"payment_account"`
	PaymentHolder        string         `json:"payment_holder"`
	PaymentSwift         string         `json:"payment_swift"`
	Categories           []string       `gorm:"type:jsonb;serializer:json" json:"categories"`
	Fees                 map[string]int `gorm:"type:jsonb;serializer:json" json:"fees"`
	MaxParticipants      map[string]int `gorm:"type:jsonb;serializer:json" json:"max_participants"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`

	Attachments []Attachment `gorm:"polymorphic:Owner" json:"attachments,omitempty"`
}

// RegistrationOpen reports whether entries are still accepted on day.
func (c *Competition) RegistrationOpen(day time.Time) bool {
	y, m, d := day.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = c.RegistrationDeadline.Date()
	return !today.After(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
