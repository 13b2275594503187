package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"fleet-dispatch-backend/config"
	"fleet-dispatch-backend/internal/mw"
	"fleet-dispatch-backend/internal/notification"
	"fleet-dispatch-backend/internal/store"
	"fleet-dispatch-backend/internal/workflow"
)

// NewRouter creates and configures a new Gin router. Read endpoints are
// rate-limited and (for anonymous callers) cached; every mutating endpoint
// requires actor identity headers.
func NewRouter(s store.Store, engine *workflow.Engine, webpushOptions *webpush.Options, pool *notification.WorkerPool, srvCfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, engine, webpushOptions, pool)

	rateLimiter := mw.RateLimiter(rate.Limit(srvCfg.RateLimitPerSec), srvCfg.RateLimitBurst, srvCfg.RequestIPHeader)

	cacheTTL := time.Duration(srvCfg.CacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Reads
		api.GET("/usage-requests/status/:status", caching, handler.ListByStatus)
		api.GET("/usage-requests/:id", handler.GetRequest)
		api.GET("/usage-requests/:id/audit", handler.GetAudit)
		api.GET("/vehicles", caching, handler.GetVehicles)
		api.GET("/drivers", caching, handler.GetDrivers)

		// Push subscriptions
		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		// Workflow transitions
		authed := api.Group("")
		authed.Use(mw.RequireActor())
		{
			authed.POST("/usage-requests", handler.CreateRequest)
			authed.POST("/usage-requests/:id/hod/approve", handler.HODApprove)
			authed.POST("/usage-requests/:id/hod/reject", handler.HODReject)
			authed.POST("/usage-requests/:id/mgmt/approve", handler.MgmtApprove)
			authed.POST("/usage-requests/:id/mgmt/reject", handler.MgmtReject)
			authed.POST("/usage-requests/:id/assign", handler.Assign)
			authed.POST("/usage-requests/:id/gate/exit", handler.GateExit)
			authed.POST("/usage-requests/:id/gate/entry", handler.GateEntry)
		}
	}

	return r
}
