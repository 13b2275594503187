package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-dispatch-backend/internal/workflow"
)

// writeDomainError maps the workflow error taxonomy onto HTTP status codes:
// validation failures are 422, guard failures (wrong state, conflicts) are
// 409, unknown ids are 404, role mismatches are 403. Anything unrecognized
// is a 500 with no internals leaked.
func writeDomainError(c *gin.Context, err error) {
	var (
		validationErr *workflow.ValidationError
		stateErr      *workflow.InvalidStateTransitionError
		conflictErr   *workflow.ConflictError
		notFoundErr   *workflow.NotFoundError
		roleErr       *workflow.RoleError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validationErr.Error()})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":         stateErr.Error(),
			"currentStatus": stateErr.Current,
		})
	case errors.As(err, &conflictErr):
		body := gin.H{"error": conflictErr.Error()}
		if conflictErr.CollidingRequestID != "" {
			body["collidingRequestId"] = conflictErr.CollidingRequestID
		}
		c.JSON(http.StatusConflict, body)
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &roleErr):
		c.JSON(http.StatusForbidden, gin.H{"error": roleErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
