package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opsboard/backend/internal/model"
)

// ActivityRecorder persists staff audit entries.
type ActivityRecorder interface {
	Record(activity *model.StaffActivity)
}

var methodActions = map[string]string{
	"POST":   "create",
	"PUT":    "update",
	"PATCH":  "update",
	"DELETE": "delete",
}

// ActivityLog records every successful mutating request by an authenticated
// user as a staff-activity entry.
func ActivityLog(recorder ActivityRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		action, mutating := methodActions[c.Request.Method]
		if !mutating || c.Writer.Status() >= 400 {
			return
		}

		userID, exists := c.Get("user_id")
		if !exists {
			return
		}
		actorID, ok := userID.(uuid.UUID)
		if !ok {
			return
		}

		entity, entityID := splitEntityPath(c.FullPath(), c.Params)
		recorder.Record(&model.StaffActivity{
			ActorID:   actorID,
			ActorName: c.GetString("username"),
			Action:    action,
			Entity:    entity,
			EntityID:  entityID,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
		})
	}
}

// splitEntityPath derives the entity name and id from a route like
// /api/v1/food-supply/:id/refill.
func splitEntityPath(fullPath string, params gin.Params) (string, string) {
	parts := strings.Split(strings.TrimPrefix(fullPath, "/api/v1/"), "/")
	entity := ""
	if len(parts) > 0 {
		entity = parts[0]
	}
	for _, p := range params {
		if p.Key == "id" {
			return entity, p.Value
		}
	}
	return entity, ""
}
