package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"fleet-dispatch-backend/internal/model"
	"fleet-dispatch-backend/internal/mw"
)

type createRequestPayload struct {
	ApplicantName string    `json:"applicantName" binding:"required"`
	EmployeeID    string    `json:"employeeId" binding:"required"`
	Department    string    `json:"department" binding:"required"`
	DateOfTravel  time.Time `json:"dateOfTravel" binding:"required"`

	ReturnDate          *time.Time `json:"returnDate"`
	TimeFrom            string     `json:"timeFrom" binding:"required"`
	TimeTo              string     `json:"timeTo" binding:"required"`
	FromLocation        string     `json:"fromLocation" binding:"required"`
	ToLocation          string     `json:"toLocation" binding:"required"`
	OfficialDescription string     `json:"officialDescription"`
	Goods               string     `json:"goods"`

	TravelWithOfficer bool   `json:"travelWithOfficer"`
	OfficerName       string `json:"officerName"`
	OfficerEmployeeID string `json:"officerEmployeeId"`
	OfficerPhone      string `json:"officerPhone"`
}

// CreateRequest handles POST /api/usage-requests. The new request starts in
// PENDING_HOD; every later change goes through a workflow transition.
func (h *Handler) CreateRequest(c *gin.Context) {
	var payload createRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	actor, ok := mw.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "actor identity is required"})
		return
	}

	req := model.UsageRequest{
		ApplicantName:       payload.ApplicantName,
		EmployeeID:          payload.EmployeeID,
		Department:          payload.Department,
		DateOfTravel:        payload.DateOfTravel.UTC(),
		TimeFrom:            payload.TimeFrom,
		TimeTo:              payload.TimeTo,
		FromLocation:        payload.FromLocation,
		ToLocation:          payload.ToLocation,
		OfficialDescription: payload.OfficialDescription,
		Goods:               payload.Goods,
		TravelWithOfficer:   payload.TravelWithOfficer,
		OfficerName:         payload.OfficerName,
		OfficerEmployeeID:   payload.OfficerEmployeeID,
		OfficerPhone:        payload.OfficerPhone,
	}
	if payload.ReturnDate != nil {
		rd := payload.ReturnDate.UTC()
		req.ReturnDate = &rd
	}

	if err := h.store.CreateRequest(c.Request.Context(), &req, actor); err != nil {
		writeDomainError(c, err)
		return
	}

	h.notifyStatusChange(req.ID)
	c.JSON(http.StatusCreated, req)
}

// GetRequest handles GET /api/usage-requests/{id}.
func (h *Handler) GetRequest(c *gin.Context) {
	req, err := h.store.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// ListByStatus handles GET /api/usage-requests/status/{status} with optional
// offset/limit pagination.
func (h *Handler) ListByStatus(c *gin.Context) {
	status := model.Status(strings.ToUpper(strings.TrimSpace(c.Param("status"))))
	if !status.Known() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown status " + string(status)})
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	requests, total, err := h.store.ListByStatus(c.Request.Context(), status, offset, limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve requests"})
		return
	}
	if requests == nil {
		requests = []model.UsageRequest{}
	}

	c.JSON(http.StatusOK, gin.H{
		"items": requests,
		"total": total,
	})
}

// GetAudit handles GET /api/usage-requests/{id}/audit: the time-ordered,
// append-only transition timeline of one request.
func (h *Handler) GetAudit(c *gin.Context) {
	entries, err := h.store.ListAudit(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if entries == nil {
		entries = []model.AuditEntry{}
	}
	c.JSON(http.StatusOK, entries)
}
