package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-dispatch-backend/internal/model"
)

func TestTransitionTable(t *testing.T) {
	// Every edge of the lifecycle, in order.
	assert.True(t, CanTransition(model.StatusPendingHOD, model.StatusPendingManagement))
	assert.True(t, CanTransition(model.StatusPendingHOD, model.StatusRejected))
	assert.True(t, CanTransition(model.StatusPendingManagement, model.StatusApproved))
	assert.True(t, CanTransition(model.StatusPendingManagement, model.StatusRejected))
	assert.True(t, CanTransition(model.StatusApproved, model.StatusScheduled))
	assert.True(t, CanTransition(model.StatusScheduled, model.StatusDispatched))
	assert.True(t, CanTransition(model.StatusDispatched, model.StatusReturned))

	// No shortcuts, no backwards edges, nothing out of terminal states.
	assert.False(t, CanTransition(model.StatusPendingHOD, model.StatusApproved))
	assert.False(t, CanTransition(model.StatusPendingHOD, model.StatusScheduled))
	assert.False(t, CanTransition(model.StatusApproved, model.StatusDispatched))
	assert.False(t, CanTransition(model.StatusScheduled, model.StatusReturned))
	assert.False(t, CanTransition(model.StatusRejected, model.StatusPendingHOD))
	assert.False(t, CanTransition(model.StatusReturned, model.StatusPendingHOD))
	assert.False(t, CanTransition(model.StatusPendingManagement, model.StatusPendingHOD))
}

func TestTransitionRoles(t *testing.T) {
	testCases := []struct {
		op   Op
		role Role
	}{
		{OpHODApprove, RoleHOD},
		{OpHODReject, RoleHOD},
		{OpMgmtApprove, RoleManagement},
		{OpMgmtReject, RoleManagement},
		{OpAssign, RoleIncharge},
		{OpGateExit, RoleGate},
		{OpGateEntry, RoleGate},
	}

	for _, tc := range testCases {
		t.Run(string(tc.op), func(t *testing.T) {
			assert.NoError(t, Authorize(tc.op, tc.role))

			var roleErr *RoleError
			err := Authorize(tc.op, RoleApplicant)
			require.ErrorAs(t, err, &roleErr)
			assert.Equal(t, tc.role, roleErr.Required)
		})
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, model.StatusRejected.Terminal())
	assert.True(t, model.StatusReturned.Terminal())
	assert.False(t, model.StatusPendingHOD.Terminal())
	assert.False(t, model.StatusDispatched.Terminal())
}

// Validation happens before the applier is ever touched, so a nil applier is
// enough to exercise the engine's payload checks.
func TestEngineValidation(t *testing.T) {
	e := NewEngine(nil)
	ctx := context.Background()
	hod := Actor{ID: "E100", Name: "Head of Dept", Role: RoleHOD}
	incharge := Actor{ID: "E200", Name: "Transport Incharge", Role: RoleIncharge}
	gate := Actor{ID: "E300", Name: "Gate Officer", Role: RoleGate}

	t.Run("blank remarks rejected on decisions", func(t *testing.T) {
		var validationErr *ValidationError
		_, err := e.Decide(ctx, "r1", OpHODApprove, hod, "   ")
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "remarks", validationErr.Field)
	})

	t.Run("blank remarks rejected before role check", func(t *testing.T) {
		// A gate officer with no remarks gets the validation error, not the
		// role error: the remarks control is independent of authorization.
		var validationErr *ValidationError
		_, err := e.Decide(ctx, "r1", OpMgmtReject, gate, "")
		require.ErrorAs(t, err, &validationErr)
	})

	t.Run("wrong role rejected on decisions", func(t *testing.T) {
		var roleErr *RoleError
		_, err := e.Decide(ctx, "r1", OpHODApprove, incharge, "ok")
		require.ErrorAs(t, err, &roleErr)
	})

	t.Run("assign requires vehicle and driver", func(t *testing.T) {
		var validationErr *ValidationError
		_, err := e.Assign(ctx, "r1", incharge, AssignInput{DriverName: "D"})
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "vehicleNumber", validationErr.Field)

		_, err = e.Assign(ctx, "r1", incharge, AssignInput{VehicleNumber: "KA-01"})
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "driverName", validationErr.Field)
	})

	t.Run("assign requires a forward window", func(t *testing.T) {
		pickup := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
		var validationErr *ValidationError
		_, err := e.Assign(ctx, "r1", incharge, AssignInput{
			VehicleNumber:    "KA-01",
			DriverName:       "D",
			PickupAt:         pickup,
			ExpectedReturnAt: pickup.Add(-time.Hour),
		})
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "expectedReturnAt", validationErr.Field)
	})

	t.Run("negative odometer rejected", func(t *testing.T) {
		odo := int64(-5)
		var validationErr *ValidationError
		_, err := e.GateExit(ctx, "r1", gate, GateInput{Odometer: &odo})
		require.ErrorAs(t, err, &validationErr)

		_, err = e.GateEntry(ctx, "r1", gate, GateInput{Odometer: &odo})
		require.ErrorAs(t, err, &validationErr)
	})
}
