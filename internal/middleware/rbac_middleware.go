package middleware

import (
	"context"
	"net/http"

	autherrors "go-hrpayroll/internal/auth/errors"
	"go-hrpayroll/internal/domain"
	"go-hrpayroll/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// RBACService is anything that can answer an EnforceRequest.
type RBACService interface {
	Enforce(ctx context.Context, req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorize(c, service, resource, action) {
			return
		}
		c.Next()
	}
}

// SelfOrAuthorize lets an employee reach their own records (path param
// equal to the token's employee id) and otherwise requires the grant.
func SelfOrAuthorize(service RBACService, param, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if self := c.GetString("employee_id"); self != "" && c.Param(param) == self {
			c.Next()
			return
		}
		if !authorize(c, service, resource, action) {
			return
		}
		c.Next()
	}
}

func authorize(c *gin.Context, service RBACService, resource, action string) bool {
	employeeID := c.GetString("employee_id")
	if employeeID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Missing auth context", nil)
		c.Abort()
		return false
	}

	allowed, err := service.Enforce(c.Request.Context(), domain.EnforceRequest{
		EmployeeID: employeeID,
		Role:       c.GetString("role"),
		Resource:   resource,
		Action:     action,
	})
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Authorization check failed", nil)
		c.Abort()
		return false
	}

	if !allowed {
		response.Error(c, autherrors.ErrForbidden.HTTPStatus, autherrors.ErrForbidden.Code, autherrors.ErrForbidden.Message,
			gin.H{"required": resource + ":" + action})
		c.Abort()
		return false
	}
	return true
}
