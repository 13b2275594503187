package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleet-dispatch-backend/internal/store"
)

// availabilityWindow parses the optional available_from/available_to query
// pair. Both must be present and RFC3339, or neither.
func availabilityWindow(c *gin.Context) (*store.Window, bool) {
	fromParam := c.Query("available_from")
	toParam := c.Query("available_to")
	if fromParam == "" && toParam == "" {
		return nil, true
	}
	if fromParam == "" || toParam == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "available_from and available_to must be supplied together"})
		return nil, false
	}

	from, err := time.Parse(time.RFC3339, fromParam)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid available_from timestamp format. Use RFC3339."})
		return nil, false
	}
	to, err := time.Parse(time.RFC3339, toParam)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid available_to timestamp format. Use RFC3339."})
		return nil, false
	}
	if !to.After(from) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "available_to must be after available_from"})
		return nil, false
	}

	return &store.Window{From: from.UTC(), To: to.UTC()}, true
}

// GetVehicles handles GET /api/vehicles, optionally filtered to vehicles
// free during the requested window.
func (h *Handler) GetVehicles(c *gin.Context) {
	window, ok := availabilityWindow(c)
	if !ok {
		return
	}

	vehicles, err := h.store.ListVehicles(c.Request.Context(), window)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vehicles"})
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

// GetDrivers handles GET /api/drivers, optionally filtered to drivers free
// during the requested window.
func (h *Handler) GetDrivers(c *gin.Context) {
	window, ok := availabilityWindow(c)
	if !ok {
		return
	}

	drivers, err := h.store.ListDrivers(c.Request.Context(), window)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve drivers"})
		return
	}
	c.JSON(http.StatusOK, drivers)
}
