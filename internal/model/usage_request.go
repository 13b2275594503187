package model

import "time"

// Status is the lifecycle state of a usage request (persisted as a string).
type Status string

const (
	StatusPendingHOD        Status = "PENDING_HOD"
	StatusPendingManagement Status = "PENDING_MANAGEMENT"
	StatusApproved          Status = "APPROVED"
	StatusScheduled         Status = "SCHEDULED"
	StatusDispatched        Status = "DISPATCHED"
	StatusRejected          Status = "REJECTED"
	StatusReturned          Status = "RETURNED"
)

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusReturned
}

// Known reports whether s is one of the defined lifecycle states.
func (s Status) Known() bool {
	switch s {
	case StatusPendingHOD, StatusPendingManagement, StatusApproved,
		StatusScheduled, StatusDispatched, StatusRejected, StatusReturned:
		return true
	}
	return false
}

// UsageRequest is the aggregate root of the dispatch workflow. The status
// column is the single source of truth for which actions are legal; every
// other lifecycle field is a consequence of a transition, never the other
// way around.
type UsageRequest struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	RequestCode string `gorm:"uniqueIndex;size:32;not null" json:"requestCode"`

	// Applicant facts, immutable after creation.
	ApplicantName string    `gorm:"size:128;not null" json:"applicantName"`
	EmployeeID    string    `gorm:"size:32;not null;index" json:"employeeId"`
	Department    string    `gorm:"size:128;not null" json:"department"`
	AppliedDate   time.Time `gorm:"not null" json:"appliedDate"`

	// Travel facts, immutable after creation.
	DateOfTravel        time.Time  `gorm:"not null" json:"dateOfTravel"`
	ReturnDate          *time.Time `json:"returnDate,omitempty"`
	TimeFrom            string     `gorm:"size:16;not null" json:"timeFrom"`
	TimeTo              string     `gorm:"size:16;not null" json:"timeTo"`
	FromLocation        string     `gorm:"size:256;not null" json:"fromLocation"`
	ToLocation          string     `gorm:"size:256;not null" json:"toLocation"`
	OfficialDescription string     `gorm:"size:1024" json:"officialDescription,omitempty"`
	Goods               string     `gorm:"size:512" json:"goods,omitempty"`
	TravelWithOfficer   bool       `gorm:"not null;default:false" json:"travelWithOfficer"`
	OfficerName         string     `gorm:"size:128" json:"officerName,omitempty"`
	OfficerEmployeeID   string     `gorm:"size:32" json:"officerEmployeeId,omitempty"`
	OfficerPhone        string     `gorm:"size:32" json:"officerPhone,omitempty"`

	Status Status `gorm:"type:varchar(24);index;not null" json:"status"`

	// Approval effects.
	HODActionBy  string     `gorm:"size:128" json:"hodActionBy,omitempty"`
	HODActionAt  *time.Time `json:"hodActionAt,omitempty"`
	MgmtActionBy string     `gorm:"size:128" json:"mgmtActionBy,omitempty"`
	MgmtActionAt *time.Time `json:"mgmtActionAt,omitempty"`

	// Assignment facts, null until the assign transition. One assignment
	// per request; reassignment is not modeled.
	AssignedVehicleID     string     `gorm:"size:36;index" json:"assignedVehicleId,omitempty"`
	AssignedVehicleNumber string     `gorm:"size:32" json:"assignedVehicleNumber,omitempty"`
	AssignedDriverID      string     `gorm:"size:36;index" json:"assignedDriverId,omitempty"`
	AssignedDriverName    string     `gorm:"size:128" json:"assignedDriverName,omitempty"`
	AssignedDriverPhone   string     `gorm:"size:32" json:"assignedDriverPhone,omitempty"`
	Instructions          string     `gorm:"size:512" json:"instructions,omitempty"`
	ScheduledPickupAt     *time.Time `json:"scheduledPickupAt,omitempty"`
	ScheduledReturnAt     *time.Time `json:"scheduledReturnAt,omitempty"`

	// Gate facts, each settable exactly once.
	GateExitAt    *time.Time `json:"gateExitAt,omitempty"`
	ExitOdometer  *int64     `json:"exitOdometer,omitempty"`
	GateEntryAt   *time.Time `json:"gateEntryAt,omitempty"`
	EntryOdometer *int64     `json:"entryOdometer,omitempty"`

	CreatedBy string    `gorm:"size:128;not null" json:"createdBy"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedBy string    `gorm:"size:128" json:"updatedBy,omitempty"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}
