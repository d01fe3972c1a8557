package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/huddle-app/backend/internal/authz"
	"github.com/huddle-app/backend/internal/models"
	"github.com/huddle-app/backend/pkg/response"
)

// RequireCapability returns a middleware that allows only users whose role's
// capability set grants the given capability. Call after JWT.
func RequireCapability(cap authz.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, ok := c.Get(ContextUserRole)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		role, _ := roleVal.(string)
		if !authz.PolicyFor(models.Role(role)).Has(cap) {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
