package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/togglekeep/togglekeep/internal/services"
)

// RequireOperation enforces the static access policy table for the
// named operation, before the handler (and therefore before the audit
// interception) runs. Non-public operations require an authenticated
// actor (401) whose role is in the permitted set (403).
func RequireOperation(operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if services.IsPublic(operation) {
			c.Next()
			return
		}

		v, ok := c.Get(ActorKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		actor, ok := v.(services.Actor)
		if !ok || !services.Authorize(operation, actor.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		c.Next()
	}
}
