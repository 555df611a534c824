package middleware

import (
	"net/http"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
)

// Enforce checks the caller's role against the casbin policy for the
// requested path and method. Roles map to casbin subjects as
// role_<lowercase role>.
func Enforce(enforcer *casbin.Enforcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("user_role")
		if role == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "No role in context"})
			return
		}
		subject := "role_" + strings.ToLower(role)
		if subject == "role_superadmin" {
			subject = "role_admin"
		}

		ok, err := enforcer.Enforce(subject, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "Authorization check failed"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Insufficient permissions"})
			return
		}
		c.Next()
	}
}
