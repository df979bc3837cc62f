package rbac

import (
	"go-hrpayroll/internal/domain"
	"go-hrpayroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, auth gin.HandlerFunc) {
	group := r.Group("/rbac")
	group.Use(auth, middleware.RoleMiddleware(domain.RoleHR, domain.RoleAdmin))
	{
		group.POST("/enforce", handler.Enforce)
	}
}
