package models

import "time"

// Attachment is the metadata of an uploaded file. File bytes are not stored.
type Attachment struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	OwnerID     uint      `gorm:"not null;index:idx_attachment_owner" json:"-"`
	OwnerType   string    `gorm:"type:varchar(32);not null;index:idx_attachment_owner" json:"-"`
	Slot        string    `gorm:"type:varchar(64);not null" json:"slot"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}
