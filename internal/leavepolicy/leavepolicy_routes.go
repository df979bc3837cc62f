package leavepolicy

import (
	"go-hrpayroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService, auth gin.HandlerFunc) {
	policies := r.Group("/hr-policy2")
	policies.Use(auth)
	{
		policies.GET("", middleware.RBACAuthorize(rbacService, "leave_policy", "read"), handler.Get)
		policies.POST("", middleware.RBACAuthorize(rbacService, "leave_policy", "manage"), handler.Save)
		policies.GET("/versions", middleware.RBACAuthorize(rbacService, "leave_policy", "manage"), handler.ListVersions)
	}
}
