package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet-dispatch-backend/internal/model"
	"fleet-dispatch-backend/internal/reqcode"
	"fleet-dispatch-backend/internal/workflow"
)

// Window is a half-open time interval [From, To) used for availability queries.
type Window struct {
	From time.Time
	To   time.Time
}

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	CreateRequest(ctx context.Context, req *model.UsageRequest, actor workflow.Actor) error
	GetRequest(ctx context.Context, id string) (*model.UsageRequest, error)
	ListByStatus(ctx context.Context, status model.Status, offset, limit int) ([]model.UsageRequest, int64, error)
	ListAudit(ctx context.Context, requestID string) ([]model.AuditEntry, error)

	ApplyTransition(ctx context.Context, requestID string, spec workflow.TransitionSpec) (*model.UsageRequest, error)

	UpsertFleet(ctx context.Context, vehicles []VehicleItem, drivers []DriverItem) error
	ListVehicles(ctx context.Context, available *Window) ([]model.Vehicle, error)
	ListDrivers(ctx context.Context, available *Window) ([]model.Driver, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// CreateRequest persists a new usage request in PENDING_HOD together with its
// creation audit entry. The request code is a per-year sequence; the unique
// index on request_code surfaces the rare concurrent collision as an error
// rather than a duplicate.
func (s *gormStore) CreateRequest(ctx context.Context, req *model.UsageRequest, actor workflow.Actor) error {
	now := time.Now().UTC()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.AppliedDate.IsZero() {
		req.AppliedDate = now
	}
	req.Status = model.StatusPendingHOD
	req.CreatedBy = actor.Name
	req.UpdatedBy = actor.Name
	req.CreatedAt = now
	req.UpdatedAt = now

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		year := req.AppliedDate.Year()
		var seq int64
		if err := tx.Model(&model.UsageRequest{}).
			Where("request_code LIKE ?", fmt.Sprintf("VR-%04d-%%", year)).
			Count(&seq).Error; err != nil {
			return fmt.Errorf("failed to count requests for code sequence: %w", err)
		}
		req.RequestCode = reqcode.Format(year, int(seq)+1)

		if err := tx.Create(req).Error; err != nil {
			return fmt.Errorf("failed to create usage request: %w", err)
		}

		entry := model.AuditEntry{
			RequestID:  req.ID,
			FromStatus: "",
			ToStatus:   model.StatusPendingHOD,
			ActorID:    actor.ID,
			ActorName:  actor.Name,
			Role:       string(actor.Role),
			CreatedAt:  now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to append creation audit entry: %w", err)
		}
		return nil
	})
}

func (s *gormStore) GetRequest(ctx context.Context, id string) (*model.UsageRequest, error) {
	var req model.UsageRequest
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &workflow.NotFoundError{Kind: "usage request", ID: id}
		}
		return nil, err
	}
	return &req, nil
}

// ListByStatus returns requests in the given status, newest first.
func (s *gormStore) ListByStatus(ctx context.Context, status model.Status, offset, limit int) ([]model.UsageRequest, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := s.db.WithContext(ctx).Model(&model.UsageRequest{}).Where("status = ?", string(status))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []model.UsageRequest
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// ListAudit returns the time-ordered transition timeline of one request.
func (s *gormStore) ListAudit(ctx context.Context, requestID string) ([]model.AuditEntry, error) {
	if _, err := s.GetRequest(ctx, requestID); err != nil {
		return nil, err
	}

	var entries []model.AuditEntry
	if err := s.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ApplyTransition executes one workflow transition atomically: load, check
// the source status, apply effects, run in-transaction guards, write the new
// state conditioned on the status read at the start (compare-and-swap), and
// append the audit entry. A failure at any step rolls the whole unit back;
// the request is never left between states.
func (s *gormStore) ApplyTransition(ctx context.Context, requestID string, spec workflow.TransitionSpec) (*model.UsageRequest, error) {
	var updated model.UsageRequest

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var req model.UsageRequest
		if err := tx.Where("id = ?", requestID).First(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &workflow.NotFoundError{Kind: "usage request", ID: requestID}
			}
			return err
		}
		if req.Status != spec.From {
			if spec.OnInvalidState != nil {
				if specErr := spec.OnInvalidState(&req); specErr != nil {
					return specErr
				}
			}
			return &workflow.InvalidStateTransitionError{
				RequestID: requestID,
				Op:        spec.Op,
				Required:  spec.From,
				Current:   req.Status,
			}
		}

		if spec.Mutate != nil {
			if err := spec.Mutate(&req); err != nil {
				return err
			}
		}
		if spec.Guard != nil {
			if err := spec.Guard(tx, &req); err != nil {
				return err
			}
		}

		req.Status = spec.To
		req.UpdatedAt = spec.Now

		// The status predicate makes this a compare-and-swap: a concurrent
		// writer that advanced the request first leaves zero rows to update.
		res := tx.Model(&model.UsageRequest{}).
			Where("id = ? AND status = ?", req.ID, string(spec.From)).
			Select("*").Omit("id", "created_at", "created_by").
			Updates(&req)
		if res.Error != nil {
			return fmt.Errorf("failed to update usage request %s: %w", req.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			var current model.UsageRequest
			_ = tx.Select("status").Where("id = ?", requestID).First(&current).Error
			return &workflow.InvalidStateTransitionError{
				RequestID: requestID,
				Op:        spec.Op,
				Required:  spec.From,
				Current:   current.Status,
			}
		}

		var payload string
		if spec.Payload != nil {
			raw, err := json.Marshal(spec.Payload)
			if err != nil {
				return fmt.Errorf("failed to serialize audit payload: %w", err)
			}
			payload = string(raw)
		}

		entry := model.AuditEntry{
			RequestID:  req.ID,
			FromStatus: spec.From,
			ToStatus:   spec.To,
			ActorID:    spec.Actor.ID,
			ActorName:  spec.Actor.Name,
			Role:       string(spec.Actor.Role),
			Remarks:    spec.Remarks,
			Payload:    payload,
			CreatedAt:  spec.Now,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to append audit entry: %w", err)
		}

		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpsertFleet mirrors the registry feed into the local vehicle and driver
// tables. Existing rows are updated in place; rows are never deleted here,
// the registry marks retirements with active=false.
func (s *gormStore) UpsertFleet(ctx context.Context, vehicles []VehicleItem, drivers []DriverItem) error {
	now := time.Now().UTC()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(vehicles) > 0 {
			rows := make([]model.Vehicle, 0, len(vehicles))
			for _, v := range vehicles {
				if v.ID == "" || v.VehicleNumber == "" {
					continue
				}
				rows = append(rows, model.Vehicle{
					ID:            v.ID,
					VehicleNumber: v.VehicleNumber,
					VehicleType:   v.VehicleType,
					Capacity:      v.Capacity,
					Active:        v.Active,
					SyncedAt:      now,
				})
			}
			if len(rows) > 0 {
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					DoUpdates: clause.AssignmentColumns([]string{"vehicle_number", "vehicle_type", "capacity", "active", "synced_at", "updated_at"}),
				}).Create(&rows).Error; err != nil {
					return fmt.Errorf("batch upsert vehicles failed: %w", err)
				}
			}
		}

		if len(drivers) > 0 {
			rows := make([]model.Driver, 0, len(drivers))
			for _, d := range drivers {
				if d.ID == "" || d.Name == "" {
					continue
				}
				rows = append(rows, model.Driver{
					ID:        d.ID,
					Name:      d.Name,
					Phone:     d.Phone,
					LicenseNo: d.LicenseNo,
					Active:    d.Active,
					SyncedAt:  now,
				})
			}
			if len(rows) > 0 {
				if err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "license_no", "active", "synced_at", "updated_at"}),
				}).Create(&rows).Error; err != nil {
					return fmt.Errorf("batch upsert drivers failed: %w", err)
				}
			}
		}
		return nil
	})
}

// ListVehicles returns active vehicles, excluding those committed to a
// SCHEDULED or DISPATCHED request overlapping the given window.
func (s *gormStore) ListVehicles(ctx context.Context, available *Window) ([]model.Vehicle, error) {
	q := s.db.WithContext(ctx).Where("active = ?", true).Order("vehicle_number ASC")
	if available != nil {
		busy := s.db.Model(&model.UsageRequest{}).
			Select("assigned_vehicle_id").
			Where("status IN ?", []string{string(model.StatusScheduled), string(model.StatusDispatched)}).
			Where("scheduled_pickup_at < ? AND scheduled_return_at > ?", available.To, available.From)
		q = q.Where("id NOT IN (?)", busy)
	}

	var vehicles []model.Vehicle
	if err := q.Find(&vehicles).Error; err != nil {
		return nil, err
	}
	return vehicles, nil
}

// ListDrivers returns active drivers, excluding those committed to a
// SCHEDULED or DISPATCHED request overlapping the given window.
func (s *gormStore) ListDrivers(ctx context.Context, available *Window) ([]model.Driver, error) {
	q := s.db.WithContext(ctx).Where("active = ?", true).Order("name ASC")
	if available != nil {
		busy := s.db.Model(&model.UsageRequest{}).
			Select("assigned_driver_id").
			Where("status IN ?", []string{string(model.StatusScheduled), string(model.StatusDispatched)}).
			Where("scheduled_pickup_at < ? AND scheduled_return_at > ?", available.To, available.From)
		q = q.Where("id NOT IN (?)", busy)
	}

	var drivers []model.Driver
	if err := q.Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}
