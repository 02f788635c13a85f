package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/togglekeep/togglekeep/internal/services"
)

// Gin context keys populated for authenticated requests.
const (
	ActorKey  = "actor"
	UserIDKey = "userID"
	RoleKey   = "role"
)

const authCookieName = "auth_token"

// Authenticate resolves the bearer token into the request actor, which
// it stores both in gin keys and in the request context for the audit
// path. A missing token leaves the request anonymous; a token that is
// present but malformed, expired or bound to a missing/inactive user
// fails the request outright.
func Authenticate(authService *services.AuthService, tokens *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := tokens.Verify(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, err := authService.GetActiveUser(claims.Subject)
		if err != nil || !tokens.IsValid(tokenString, user.Username) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		actor := services.Actor{UserID: user.ID, Username: user.Username, Role: user.Role}
		c.Set(ActorKey, actor)
		c.Set(UserIDKey, user.ID)
		c.Set(RoleKey, user.Role)
		c.Request = c.Request.WithContext(services.WithActor(c.Request.Context(), actor))

		c.Next()
	}
}

// extractToken pulls the bearer token from the auth cookie or the
// Authorization header, cookie first for browser requests.
func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(authCookieName); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}
