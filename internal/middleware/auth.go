package middleware

import (
	"net/http"

	"github.com/afr-space/core/internal/pkg/jwt"
	"github.com/afr-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const ContextKeyUser = "auth_user"

// Authenticator resolves the signed-in user of a request.
type Authenticator interface {
	Authenticate(r *http.Request) (jwt.Identity, bool)
}

// Auth rejects requests without a valid session with 401.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := a.Authenticate(c.Request)
		if !ok {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// OptionalAuth sets the user if a valid session is present, but does not block the request.
func OptionalAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := a.Authenticate(c.Request); ok {
			c.Set(ContextKeyUser, user)
		}
		c.Next()
	}
}

// RequireRole must run after Auth. It answers 403 unless the user has one
// of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			response.Unauthorized(c)
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		response.Forbidden(c)
	}
}

// PageGuard redirects browsers without a valid session to loginPath.
func PageGuard(a Authenticator, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := a.Authenticate(c.Request)
		if !ok {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by Auth.
func CurrentUser(c *gin.Context) (jwt.Identity, bool) {
	v, ok := c.Get(ContextKeyUser)
	if !ok {
		return jwt.Identity{}, false
	}
	user, ok := v.(jwt.Identity)
	return user, ok
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	user, _ := CurrentUser(c)
	return user.ID
}

// IsAuthenticated returns true if the request carries a valid session.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}
