package increment

import (
	"go-hrpayroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	auth gin.HandlerFunc,
) {
	increments := r.Group("/salary-increments")
	increments.Use(auth)
	{
		increments.GET("", middleware.RBACAuthorize(rbacService, "increment", "read"), handler.Increments)
		increments.GET("/export", middleware.RBACAuthorize(rbacService, "increment", "read"), handler.Export)
		increments.POST("/:employeeId/fines", middleware.RBACAuthorize(rbacService, "increment", "manage"), handler.AddFine)
	}

	r.GET("/special-increments", auth, middleware.RBACAuthorize(rbacService, "increment", "read"), handler.SpecialIncrements)

	policy := r.Group("/hr-policy")
	policy.Use(auth)
	{
		policy.GET("", middleware.RBACAuthorize(rbacService, "increment", "read"), handler.GetPolicy)
		policy.PUT("", middleware.RBACAuthorize(rbacService, "increment", "manage"), handler.UpdatePolicy)
	}
}
