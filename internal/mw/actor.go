package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fleet-dispatch-backend/internal/workflow"
)

// Actor identity headers. An upstream auth gateway authenticates the caller
// and forwards the claims; this service consumes them as-is and never issues
// or validates credentials itself.
const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorName = "X-Actor-Name"
	HeaderActorRole = "X-Actor-Role"

	actorContextKey = "mw.actor"
)

// RequireActor extracts the authenticated actor claims from the request
// headers and aborts with 401 when they are absent. Role authorization for
// a specific transition is the workflow engine's job, not this middleware's.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderActorID))
		name := strings.TrimSpace(c.GetHeader(HeaderActorName))
		role := strings.TrimSpace(strings.ToUpper(c.GetHeader(HeaderActorRole)))

		if id == "" || role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "actor identity headers are required"})
			return
		}
		if name == "" {
			name = id
		}

		c.Set(actorContextKey, workflow.Actor{ID: id, Name: name, Role: workflow.Role(role)})
		c.Next()
	}
}

// ActorFrom returns the actor stored by RequireActor.
func ActorFrom(c *gin.Context) (workflow.Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return workflow.Actor{}, false
	}
	actor, ok := v.(workflow.Actor)
	return actor, ok
}
