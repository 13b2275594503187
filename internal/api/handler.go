package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"fleet-dispatch-backend/internal/notification"
	"fleet-dispatch-backend/internal/store"
	"fleet-dispatch-backend/internal/workflow"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	engine  *workflow.Engine
	webpush *webpush.Options
	pool    *notification.WorkerPool
}

// NewHandler creates a new API handler. The worker pool may be nil when push
// notifications are not configured.
func NewHandler(s store.Store, engine *workflow.Engine, webpushOptions *webpush.Options, pool *notification.WorkerPool) *Handler {
	return &Handler{
		store:   s,
		engine:  engine,
		webpush: webpushOptions,
		pool:    pool,
	}
}

// notifyStatusChange hands the request to the notification worker pool.
func (h *Handler) notifyStatusChange(requestID string) {
	if h.pool == nil {
		return
	}
	h.pool.Dispatch(requestID)
}
