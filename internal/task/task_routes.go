package task

import (
	"go-hrpayroll/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService, auth gin.HandlerFunc) {
	tasks := r.Group("/tasks")
	tasks.Use(auth)
	{
		tasks.POST("", middleware.RBACAuthorize(rbacService, "task", "create"), handler.Create)
		tasks.GET("", middleware.RBACAuthorize(rbacService, "task", "read"), handler.GetAll)
		tasks.GET("/ratings/:employeeId", middleware.SelfOrAuthorize(rbacService, "employeeId", "task", "manage"), handler.Ratings)
		tasks.GET("/:id", middleware.RBACAuthorize(rbacService, "task", "read"), handler.GetByID)
		tasks.PUT("/start/:id", middleware.RBACAuthorize(rbacService, "task", "read"), handler.Start)
		tasks.PUT("/pause/:id", middleware.RBACAuthorize(rbacService, "task", "read"), handler.Pause)
		tasks.PUT("/complete/:id", middleware.RBACAuthorize(rbacService, "task", "read"), handler.Complete)
		tasks.DELETE("/:id", middleware.RBACAuthorize(rbacService, "task", "manage"), handler.Delete)
	}
}
