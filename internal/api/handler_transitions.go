package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-dispatch-backend/internal/model"
	"fleet-dispatch-backend/internal/mw"
	"fleet-dispatch-backend/internal/workflow"
)

type decisionPayload struct {
	Remarks string `json:"remarks"`
}

// decide runs one of the four HOD/Management decision operations. Blank
// remarks are rejected by the engine itself, so an empty body still gets the
// proper validation error rather than a bind failure.
func (h *Handler) decide(c *gin.Context, op workflow.Op) {
	var payload decisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	actor, ok := mw.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "actor identity is required"})
		return
	}

	req, err := h.engine.Decide(c.Request.Context(), c.Param("id"), op, actor, payload.Remarks)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	h.notifyStatusChange(req.ID)
	c.JSON(http.StatusOK, req)
}

// HODApprove handles POST /api/usage-requests/{id}/hod/approve.
func (h *Handler) HODApprove(c *gin.Context) { h.decide(c, workflow.OpHODApprove) }

// HODReject handles POST /api/usage-requests/{id}/hod/reject.
func (h *Handler) HODReject(c *gin.Context) { h.decide(c, workflow.OpHODReject) }

// MgmtApprove handles POST /api/usage-requests/{id}/mgmt/approve.
func (h *Handler) MgmtApprove(c *gin.Context) { h.decide(c, workflow.OpMgmtApprove) }

// MgmtReject handles POST /api/usage-requests/{id}/mgmt/reject.
func (h *Handler) MgmtReject(c *gin.Context) { h.decide(c, workflow.OpMgmtReject) }

// Assign handles POST /api/usage-requests/{id}/assign.
func (h *Handler) Assign(c *gin.Context) {
	var payload workflow.AssignInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	actor, ok := mw.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "actor identity is required"})
		return
	}

	req, err := h.engine.Assign(c.Request.Context(), c.Param("id"), actor, payload)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	h.notifyStatusChange(req.ID)
	c.JSON(http.StatusOK, req)
}

type gateExitPayload struct {
	ExitOdometer *int64 `json:"exitOdometer"`
	Remarks      string `json:"remarks"`
}

type gateEntryPayload struct {
	EntryOdometer *int64 `json:"entryOdometer"`
	Remarks       string `json:"remarks"`
}

// GateExit handles POST /api/usage-requests/{id}/gate/exit.
func (h *Handler) GateExit(c *gin.Context) {
	var payload gateExitPayload
	if err := c.ShouldBindJSON(&payload); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	h.gate(c, payload.ExitOdometer, payload.Remarks, func(c *gin.Context, actor workflow.Actor, in workflow.GateInput) (*model.UsageRequest, error) {
		return h.engine.GateExit(c.Request.Context(), c.Param("id"), actor, in)
	})
}

// GateEntry handles POST /api/usage-requests/{id}/gate/entry.
func (h *Handler) GateEntry(c *gin.Context) {
	var payload gateEntryPayload
	if err := c.ShouldBindJSON(&payload); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	h.gate(c, payload.EntryOdometer, payload.Remarks, func(c *gin.Context, actor workflow.Actor, in workflow.GateInput) (*model.UsageRequest, error) {
		return h.engine.GateEntry(c.Request.Context(), c.Param("id"), actor, in)
	})
}

func (h *Handler) gate(c *gin.Context, odometer *int64, remarks string, run func(*gin.Context, workflow.Actor, workflow.GateInput) (*model.UsageRequest, error)) {
	actor, ok := mw.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "actor identity is required"})
		return
	}

	req, err := run(c, actor, workflow.GateInput{Odometer: odometer, Remarks: remarks})
	if err != nil {
		writeDomainError(c, err)
		return
	}

	h.notifyStatusChange(req.ID)
	c.JSON(http.StatusOK, req)
}
