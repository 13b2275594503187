package model

import "time"

// AuditEntry records one state transition of a usage request. Rows are
// append-only; nothing in the application updates or deletes them.
type AuditEntry struct {
	ID         int64  `gorm:"autoIncrement;primaryKey" json:"id"`
	RequestID  string `gorm:"size:36;not null;index" json:"requestId"`
	FromStatus Status `gorm:"type:varchar(24);not null" json:"fromStatus"`
	ToStatus   Status `gorm:"type:varchar(24);not null" json:"toStatus"`
	ActorID    string `gorm:"size:32;not null" json:"actorId"`
	ActorName  string `gorm:"size:128;not null" json:"actorName"`
	Role       string `gorm:"size:32;not null" json:"role"`
	Remarks    string `gorm:"size:1024" json:"remarks,omitempty"`
	// Payload carries the role-specific transition payload as serialized JSON.
	Payload   string    `gorm:"size:2048" json:"payload,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}
