package leave

import (
	"go-hrpayroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	auth gin.HandlerFunc,
	idempotency gin.HandlerFunc,
) {
	leaves := r.Group("/leaves")
	leaves.Use(auth)
	{
		leaves.POST("", middleware.RBACAuthorize(rbacService, "leave", "create"), idempotency, handler.Create)
		leaves.GET("", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.GetAll)
		leaves.GET("/pending", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.GetPending)
		leaves.GET("/pending/count", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.PendingCount)
		leaves.PUT("/status/:id", middleware.RBACAuthorize(rbacService, "leave", "approve"), handler.UpdateStatus)

		leaves.GET("/employee/:employeeId", middleware.SelfOrAuthorize(rbacService, "employeeId", "leave", "approve"), handler.GetByEmployee)
		leaves.GET("/balance/:employeeId", middleware.SelfOrAuthorize(rbacService, "employeeId", "leave", "approve"), handler.Balances)
		leaves.PUT("/mark-seen/:employeeId", middleware.SelfOrAuthorize(rbacService, "employeeId", "leave", "approve"), handler.MarkSeen)
		leaves.GET("/status/count/:employeeId", middleware.SelfOrAuthorize(rbacService, "employeeId", "leave", "approve"), handler.DecidedUnseenCount)

		leaves.GET("/:id", middleware.RBACAuthorize(rbacService, "leave", "read"), handler.GetByID)
	}
}
