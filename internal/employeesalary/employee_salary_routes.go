package employeesalary

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
	catalog := r.Group("/salary-components")
	catalog.Use(auth)
	{
		catalog.GET("", middleware.RBACAuthorize(rbacService, "salary_component", "read"), handler.GetCatalog)
		catalog.POST("",
			middleware.RateLimitByUser(0.5, 2),
			middleware.RBACAuthorize(rbacService, "salary_component", "manage"),
			handler.SaveCatalog,
		)
	}

	assigned := r.Group("/salary-components-assigned")
	assigned.Use(auth)
	{
		assigned.GET("/:employeeId",
			middleware.SelfOrAuthorize(rbacService, "employeeId", "salary_component", "read"),
			handler.GetAssigned,
		)
		assigned.POST("/:employeeId",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "salary_component", "manage"),
			handler.Assign,
		)
	}
}
