package model

import "time"

// Driver is a read-only projection of the external fleet registry, mirrored
// locally for assignment validation.
type Driver struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Name      string    `gorm:"index;size:128;not null"`
	Phone     string    `gorm:"size:32"`
	LicenseNo string    `gorm:"size:64"`
	Active    bool      `gorm:"not null;default:true"`
	SyncedAt  time.Time `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
