package salaryslip

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
	generate := r.Group("/generate-salary-slip")
	generate.Use(auth)
	{
		generate.GET("", middleware.RBACAuthorize(rbacService, "salary_slip", "read"), handler.Generate)
		generate.GET("/pdf", middleware.RBACAuthorize(rbacService, "salary_slip", "read"), handler.GeneratePDF)
	}

	slips := r.Group("/salary-slip")
	slips.Use(auth)
	{
		slips.POST("/save-all", middleware.RBACAuthorize(rbacService, "salary_slip", "generate"), idempotency, handler.SaveAll)
		slips.POST("/run", middleware.RBACAuthorize(rbacService, "salary_slip", "generate"), idempotency, handler.Run)
		slips.GET("", middleware.RBACAuthorize(rbacService, "salary_slip", "generate"), handler.GetSnapshot)
		slips.GET("/export", middleware.RBACAuthorize(rbacService, "salary_slip", "export"), handler.Export)
	}
}
