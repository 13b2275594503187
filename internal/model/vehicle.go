package model

import "time"

// Vehicle is a read-only projection of the external fleet registry. The
// registry sync service upserts these rows; the workflow engine only reads
// them to validate assignments.
type Vehicle struct {
	ID            string `gorm:"primaryKey;size:36"`
	VehicleNumber string `gorm:"uniqueIndex;size:32;not null"`
	VehicleType   string `gorm:"size:64"`
	Capacity      int
	Active        bool      `gorm:"not null;default:true"`
	SyncedAt      time.Time `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
