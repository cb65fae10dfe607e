package middleware

import (
	"net/http"
	"slices"

	"github.com/fathiyyah28/proyek-sub000/internal/domain/shared"
	"github.com/fathiyyah28/proyek-sub000/internal/infrastructure/logger"
	"github.com/fathiyyah28/proyek-sub000/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RequireRoles lets the request through only when the authenticated actor
// holds one of roles. It must run after the JWT middleware. Branch scoping
// stays with the services since it depends on the resource.
func RequireRoles(roles ...shared.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := logger.GetRequestID(c.Request.Context())

		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", requestID))
			return
		}
		if !slices.Contains(roles, actor.Role) {
			logger.L(c.Request.Context()).Debug("Role check failed")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Role "+string(actor.Role)+" may not perform this action", requestID))
			return
		}
		c.Next()
	}
}

// RequireOwner allows only the owner role
func RequireOwner() gin.HandlerFunc {
	return RequireRoles(shared.RoleOwner)
}

// RequireStaff allows owners and employees
func RequireStaff() gin.HandlerFunc {
	return RequireRoles(shared.RoleOwner, shared.RoleEmployee)
}
