package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-dispatch-backend/internal/model"
)

// Actor is the already-authenticated identity invoking a transition.
type Actor struct {
	ID   string
	Name string
	Role Role
}

// TransitionSpec is the unit of work the engine hands to the store. The
// store executes Mutate and Guard inside one transaction, conditions the
// status write on Transition.From (compare-and-swap), and appends the audit
// entry in the same transaction.
type TransitionSpec struct {
	Transition
	Actor   Actor
	Remarks string
	Payload any
	Now     time.Time

	// Mutate applies the transition's effects to the loaded aggregate.
	Mutate func(req *model.UsageRequest) error
	// Guard runs in-transaction checks that need database access, such as
	// the assignment overlap check. It may set resolved fields on req.
	Guard func(tx *gorm.DB, req *model.UsageRequest) error
	// OnInvalidState, when set, may reclassify a source-state mismatch.
	// Gate operations use it to turn a duplicate exit/entry into a conflict
	// instead of a generic wrong-state error.
	OnInvalidState func(req *model.UsageRequest) error
}

// Applier executes a TransitionSpec atomically. Implemented by the store.
type Applier interface {
	ApplyTransition(ctx context.Context, requestID string, spec TransitionSpec) (*model.UsageRequest, error)
}

// Engine validates payloads and role gates, then delegates atomic execution
// to the Applier. It is stateless; every call stands alone.
type Engine struct {
	applier Applier
	now     func() time.Time
}

// NewEngine creates a workflow engine backed by the given applier.
func NewEngine(a Applier) *Engine {
	return &Engine{applier: a, now: func() time.Time { return time.Now().UTC() }}
}

// Decide executes one of the four HOD/Management decision operations.
// Remarks are mandatory on every decision, independent of role checks:
// there are no silent approvals or rejections.
func (e *Engine) Decide(ctx context.Context, requestID string, op Op, actor Actor, remarks string) (*model.UsageRequest, error) {
	switch op {
	case OpHODApprove, OpHODReject, OpMgmtApprove, OpMgmtReject:
	default:
		return nil, &ValidationError{Field: "operation", Reason: "not a decision operation: " + string(op)}
	}
	if strings.TrimSpace(remarks) == "" {
		return nil, &ValidationError{Field: "remarks", Reason: "remarks are required"}
	}
	if err := Authorize(op, actor.Role); err != nil {
		return nil, err
	}

	now := e.now()
	spec := TransitionSpec{
		Transition: Transitions[op],
		Actor:      actor,
		Remarks:    remarks,
		Now:        now,
		Mutate: func(req *model.UsageRequest) error {
			t := now
			switch op {
			case OpHODApprove, OpHODReject:
				req.HODActionBy = actor.Name
				req.HODActionAt = &t
			case OpMgmtApprove, OpMgmtReject:
				req.MgmtActionBy = actor.Name
				req.MgmtActionAt = &t
			}
			req.UpdatedBy = actor.Name
			return nil
		},
	}
	return e.applier.ApplyTransition(ctx, requestID, spec)
}

// AssignInput is the incharge's assignment payload.
type AssignInput struct {
	VehicleNumber    string    `json:"vehicleNumber"`
	DriverName       string    `json:"driverName"`
	DriverPhone      string    `json:"driverPhone,omitempty"`
	PickupAt         time.Time `json:"pickupAt"`
	ExpectedReturnAt time.Time `json:"expectedReturnAt"`
	Instructions     string    `json:"instructions,omitempty"`
}

// Assign commits a vehicle and driver to an approved request. The overlap
// check and the assignment write happen in one transaction; the vehicle and
// driver rows are locked for the duration so two incharge actors cannot
// double-book the same window.
func (e *Engine) Assign(ctx context.Context, requestID string, actor Actor, in AssignInput) (*model.UsageRequest, error) {
	if strings.TrimSpace(in.VehicleNumber) == "" {
		return nil, &ValidationError{Field: "vehicleNumber", Reason: "vehicle number is required"}
	}
	if strings.TrimSpace(in.DriverName) == "" {
		return nil, &ValidationError{Field: "driverName", Reason: "driver name is required"}
	}
	if in.PickupAt.IsZero() || in.ExpectedReturnAt.IsZero() {
		return nil, &ValidationError{Field: "pickupAt", Reason: "pickup and expected return times are required"}
	}
	if !in.ExpectedReturnAt.After(in.PickupAt) {
		return nil, &ValidationError{Field: "expectedReturnAt", Reason: "expected return must be after pickup"}
	}
	if err := Authorize(OpAssign, actor.Role); err != nil {
		return nil, err
	}

	now := e.now()
	spec := TransitionSpec{
		Transition: Transitions[OpAssign],
		Actor:      actor,
		Remarks:    in.Instructions,
		Payload:    in,
		Now:        now,
		Mutate: func(req *model.UsageRequest) error {
			pickup, ret := in.PickupAt.UTC(), in.ExpectedReturnAt.UTC()
			req.ScheduledPickupAt = &pickup
			req.ScheduledReturnAt = &ret
			req.Instructions = strings.TrimSpace(in.Instructions)
			req.UpdatedBy = actor.Name
			return nil
		},
		Guard: func(tx *gorm.DB, req *model.UsageRequest) error {
			return e.checkAssignment(tx, req, in)
		},
	}
	return e.applier.ApplyTransition(ctx, requestID, spec)
}

// lockForUpdate adds a row lock on dialects that support it. SQLite allows
// a single writer at a time, so the explicit lock is unnecessary there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// checkAssignment resolves the vehicle and driver, locks their rows, and
// rejects the assignment when either is committed to an overlapping window
// on another SCHEDULED or DISPATCHED request.
func (e *Engine) checkAssignment(tx *gorm.DB, req *model.UsageRequest, in AssignInput) error {
	var vehicle model.Vehicle
	err := lockForUpdate(tx).
		Where("vehicle_number = ?", strings.TrimSpace(in.VehicleNumber)).
		First(&vehicle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Kind: "vehicle", ID: in.VehicleNumber}
	}
	if err != nil {
		return err
	}
	if !vehicle.Active {
		return &ValidationError{Field: "vehicleNumber", Reason: "vehicle is not active"}
	}

	var driver model.Driver
	err = lockForUpdate(tx).
		Where("name = ?", strings.TrimSpace(in.DriverName)).
		First(&driver).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Kind: "driver", ID: in.DriverName}
	}
	if err != nil {
		return err
	}
	if !driver.Active {
		return &ValidationError{Field: "driverName", Reason: "driver is not active"}
	}

	// Half-open window [pickupAt, expectedReturnAt): two assignments collide
	// when one starts before the other ends.
	var colliding model.UsageRequest
	err = tx.
		Where("id <> ?", req.ID).
		Where("status IN ?", []string{string(model.StatusScheduled), string(model.StatusDispatched)}).
		Where("(assigned_vehicle_id = ? OR assigned_driver_id = ?)", vehicle.ID, driver.ID).
		Where("scheduled_pickup_at < ? AND scheduled_return_at > ?", in.ExpectedReturnAt.UTC(), in.PickupAt.UTC()).
		First(&colliding).Error
	if err == nil {
		return &ConflictError{
			RequestID:          req.ID,
			CollidingRequestID: colliding.ID,
			Reason:             "vehicle or driver already committed to an overlapping window",
		}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	req.AssignedVehicleID = vehicle.ID
	req.AssignedVehicleNumber = vehicle.VehicleNumber
	req.AssignedDriverID = driver.ID
	req.AssignedDriverName = driver.Name
	if strings.TrimSpace(in.DriverPhone) != "" {
		req.AssignedDriverPhone = strings.TrimSpace(in.DriverPhone)
	} else {
		req.AssignedDriverPhone = driver.Phone
	}
	return nil
}

// GateInput is the gate officer's payload for exit and entry logging.
type GateInput struct {
	Odometer *int64 `json:"odometer,omitempty"`
	Remarks  string `json:"remarks,omitempty"`
}

// GateExit logs the physical exit of the assigned vehicle. The gateExitAt
// field is settable exactly once; a duplicate call is a conflict, not an
// overwrite.
func (e *Engine) GateExit(ctx context.Context, requestID string, actor Actor, in GateInput) (*model.UsageRequest, error) {
	if in.Odometer != nil && *in.Odometer < 0 {
		return nil, &ValidationError{Field: "exitOdometer", Reason: "odometer cannot be negative"}
	}
	if err := Authorize(OpGateExit, actor.Role); err != nil {
		return nil, err
	}

	now := e.now()
	spec := TransitionSpec{
		Transition: Transitions[OpGateExit],
		Actor:      actor,
		Remarks:    in.Remarks,
		Payload:    in,
		Now:        now,
		Mutate: func(req *model.UsageRequest) error {
			if req.GateExitAt != nil {
				return &ConflictError{RequestID: req.ID, Reason: "gate exit already logged"}
			}
			t := now
			req.GateExitAt = &t
			req.ExitOdometer = in.Odometer
			req.UpdatedBy = actor.Name
			return nil
		},
		OnInvalidState: func(req *model.UsageRequest) error {
			if req.GateExitAt != nil {
				return &ConflictError{RequestID: req.ID, Reason: "gate exit already logged"}
			}
			return nil
		},
	}
	return e.applier.ApplyTransition(ctx, requestID, spec)
}

// GateEntry logs the vehicle's return through the gate and closes the trip.
// An entry odometer lower than the recorded exit odometer is rejected: a
// regression is a data error, not something to clamp at display time.
func (e *Engine) GateEntry(ctx context.Context, requestID string, actor Actor, in GateInput) (*model.UsageRequest, error) {
	if in.Odometer != nil && *in.Odometer < 0 {
		return nil, &ValidationError{Field: "entryOdometer", Reason: "odometer cannot be negative"}
	}
	if err := Authorize(OpGateEntry, actor.Role); err != nil {
		return nil, err
	}

	now := e.now()
	spec := TransitionSpec{
		Transition: Transitions[OpGateEntry],
		Actor:      actor,
		Remarks:    in.Remarks,
		Payload:    in,
		Now:        now,
		Mutate: func(req *model.UsageRequest) error {
			if req.GateEntryAt != nil {
				return &ConflictError{RequestID: req.ID, Reason: "gate entry already logged"}
			}
			if req.GateExitAt == nil {
				return &ConflictError{RequestID: req.ID, Reason: "gate entry before gate exit"}
			}
			if in.Odometer != nil && req.ExitOdometer != nil && *in.Odometer < *req.ExitOdometer {
				return &ValidationError{Field: "entryOdometer", Reason: "entry odometer is below the recorded exit odometer"}
			}
			t := now
			req.GateEntryAt = &t
			req.EntryOdometer = in.Odometer
			req.UpdatedBy = actor.Name
			return nil
		},
		OnInvalidState: func(req *model.UsageRequest) error {
			if req.GateEntryAt != nil {
				return &ConflictError{RequestID: req.ID, Reason: "gate entry already logged"}
			}
			return nil
		},
	}
	return e.applier.ApplyTransition(ctx, requestID, spec)
}
