package workflow

import (
	"fmt"

	"fleet-dispatch-backend/internal/model"
)

// ValidationError reports a malformed or missing payload field. It is
// caller-correctable and never retried by the engine.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// InvalidStateTransitionError reports an operation attempted against a
// request that is not in the operation's required source state. The caller
// must re-fetch and re-decide; the engine never retries on its behalf.
type InvalidStateTransitionError struct {
	RequestID string
	Op        Op
	Required  model.Status
	Current   model.Status
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("request %s: operation %s requires status %s, current status is %s",
		e.RequestID, e.Op, e.Required, e.Current)
}

// ConflictError reports an assignment overlap or a duplicate gate action
// detected under concurrency. CollidingRequestID names the request holding
// the conflicting assignment, when known.
type ConflictError struct {
	RequestID          string
	CollidingRequestID string
	Reason             string
}

func (e *ConflictError) Error() string {
	if e.CollidingRequestID != "" {
		return fmt.Sprintf("request %s: %s (colliding request %s)", e.RequestID, e.Reason, e.CollidingRequestID)
	}
	return fmt.Sprintf("request %s: %s", e.RequestID, e.Reason)
}

// NotFoundError reports an unknown request, vehicle or driver.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// RoleError reports an actor whose role is not authorized for the operation.
type RoleError struct {
	Op       Op
	Required Role
	Actual   Role
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("operation %s requires role %s, caller has role %s", e.Op, e.Required, e.Actual)
}
