package middlewares

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"pos-api/services"
	"pos-api/utils"
	"pos-api/utils/response"
)

// AuthMiddleware requires "Authorization: Bearer <token>" and stores the
// principal's user id and role on the context.
func AuthMiddleware(gate services.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "unauthorized", "Authorization token not provided", nil)
			return
		}
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Error(c, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format", nil)
			return
		}

		principal, err := gate.Authenticate(parts[1])
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired token", nil)
			return
		}

		c.Set(utils.ContextUserID, principal.UserID)
		c.Set(utils.ContextRole, principal.Role)
		c.Next()
	}
}

func RoleMiddleware(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !slices.Contains(roles, utils.GetUserRole(c)) {
			response.Error(c, http.StatusForbidden, "forbidden", "You do not have access to this resource", nil)
			return
		}
		c.Next()
	}
}
