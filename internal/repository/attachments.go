package repository

import (
	"context"

	"github.com/Eursukkul/competition-portal/internal/models"
	"gorm.io/gorm"
)

const (
	ownerCompetitions  = "competitions"
	ownerRegistrations = "registrations"
	ownerProfiles      = "profiles"
)

// replaceAttachments swaps the stored files of every slot present in atts.
// Slots absent from atts keep what they had.
func replaceAttachments(ctx context.Context, tx *gorm.DB, ownerType string, ownerID uint, atts []models.Attachment) error {
	if len(atts) == 0 {
		return nil
	}
	slots := make([]string, 0, len(atts))
	seen := make(map[string]bool)
	for i := range atts {
		atts[i].ID = 0
		atts[i].OwnerType = ownerType
		atts[i].OwnerID = ownerID
		if !seen[atts[i].Slot] {
			seen[atts[i].Slot] = true
			slots = append(slots, atts[i].Slot)
		}
	}
	if err := tx.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ? AND slot IN ?", ownerType, ownerID, slots).
		Delete(&models.Attachment{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Create(&atts).Error
}
