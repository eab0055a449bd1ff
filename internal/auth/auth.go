package auth

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminUser is the basic auth user name for the settings API.
const AdminUser = "admin"

// AdminAuthMiddleware guards routes with HTTP basic auth. An empty password disables the check.
func AdminAuthMiddleware(adminPassword string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminPassword == "" {
			c.Next()
			return
		}
		user, password, hasAuth := c.Request.BasicAuth()
		if !hasAuth || user != AdminUser || subtle.ConstantTimeCompare([]byte(password), []byte(adminPassword)) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="Restricted"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
