package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eventboard/backend/internal/auth"
	"github.com/eventboard/backend/pkg/response"
)

// ContextPrincipal is the gin context key holding the request's auth.Principal.
const ContextPrincipal = "principal"

// JWT returns a middleware that validates the bearer token and stores the
// resulting principal in the context. Requests without a usable identity
// (including tokens whose subject cannot be parsed) are rejected before any
// handler runs.
func JWT(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		principal, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		if !principal.IsAuthenticated() {
			response.Unauthorized(c, "invalid token subject")
			c.Abort()
			return
		}
		c.Set(ContextPrincipal, principal)
		c.Next()
	}
}

// Principal returns the authenticated principal stored by JWT.
func Principal(c *gin.Context) auth.Principal {
	return c.MustGet(ContextPrincipal).(auth.Principal)
}
