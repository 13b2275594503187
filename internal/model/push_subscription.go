package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// A subscriber (typically the applicant) follows one or more usage requests
// and is notified whenever a followed request changes status.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Requests []*UsageRequest `gorm:"many2many:subscription_request_mapping;"`
}
