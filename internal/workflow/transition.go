package workflow

import "fleet-dispatch-backend/internal/model"

// Role identifies the kind of actor invoking a transition. Roles arrive as
// already-authenticated claims; the engine only gates on them.
type Role string

const (
	RoleApplicant  Role = "APPLICANT"
	RoleHOD        Role = "HOD"
	RoleManagement Role = "MANAGEMENT"
	RoleIncharge   Role = "INCHARGE"
	RoleGate       Role = "GATE"
)

// Op names a workflow operation.
type Op string

const (
	OpCreate      Op = "create"
	OpHODApprove  Op = "hod_approve"
	OpHODReject   Op = "hod_reject"
	OpMgmtApprove Op = "mgmt_approve"
	OpMgmtReject  Op = "mgmt_reject"
	OpAssign      Op = "assign"
	OpGateExit    Op = "gate_exit"
	OpGateEntry   Op = "gate_entry"
)

// Transition describes one edge of the request state machine: which role may
// invoke the operation, the single status it may be invoked from, and the
// status it commits.
type Transition struct {
	Op   Op
	Role Role
	From model.Status
	To   model.Status
}

// Transitions is the closed transition table of the usage-request lifecycle.
// Anything not listed here is an invalid transition; the terminal states
// REJECTED and RETURNED appear only as targets.
var Transitions = map[Op]Transition{
	OpHODApprove:  {Op: OpHODApprove, Role: RoleHOD, From: model.StatusPendingHOD, To: model.StatusPendingManagement},
	OpHODReject:   {Op: OpHODReject, Role: RoleHOD, From: model.StatusPendingHOD, To: model.StatusRejected},
	OpMgmtApprove: {Op: OpMgmtApprove, Role: RoleManagement, From: model.StatusPendingManagement, To: model.StatusApproved},
	OpMgmtReject:  {Op: OpMgmtReject, Role: RoleManagement, From: model.StatusPendingManagement, To: model.StatusRejected},
	OpAssign:      {Op: OpAssign, Role: RoleIncharge, From: model.StatusApproved, To: model.StatusScheduled},
	OpGateExit:    {Op: OpGateExit, Role: RoleGate, From: model.StatusScheduled, To: model.StatusDispatched},
	OpGateEntry:   {Op: OpGateEntry, Role: RoleGate, From: model.StatusDispatched, To: model.StatusReturned},
}

// CanTransition reports whether from -> to is an edge of the table.
func CanTransition(from, to model.Status) bool {
	for _, tr := range Transitions {
		if tr.From == from && tr.To == to {
			return true
		}
	}
	return false
}

// Authorize checks that the actor's role matches the transition's gate.
func Authorize(op Op, role Role) error {
	tr, ok := Transitions[op]
	if !ok {
		return &ValidationError{Field: "operation", Reason: "unknown operation " + string(op)}
	}
	if tr.Role != role {
		return &RoleError{Op: op, Required: tr.Role, Actual: role}
	}
	return nil
}
