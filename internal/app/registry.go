package app

import (
	"context"
	"time"

	"go-hrpayroll/internal/auth"
	"go-hrpayroll/internal/config"
	"go-hrpayroll/internal/employee"
	"go-hrpayroll/internal/employeesalary"
	"go-hrpayroll/internal/increment"
	"go-hrpayroll/internal/leave"
	"go-hrpayroll/internal/leavepolicy"
	"go-hrpayroll/internal/messaging/kafka"
	"go-hrpayroll/internal/middleware"
	"go-hrpayroll/internal/rbac"
	"go-hrpayroll/internal/rbac/infra"
	"go-hrpayroll/internal/salaryslip"
	"go-hrpayroll/internal/shared/counter"
	"go-hrpayroll/internal/shared/token"
	"go-hrpayroll/internal/task"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	deps *infrastructure,
	logger *zap.Logger,
) error {
	db, gormDB, rdb, m := deps.sqlDB, deps.gormDB, deps.rdb, deps.metrics

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	authRepo := auth.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	employeeSalaryRepo := employeesalary.NewRepository(gormDB)
	incrementRepo := increment.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	leavePolicyRepo := leavepolicy.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	salarySlipRepo := salaryslip.NewRepository(gormDB)
	taskRepo := task.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer, logger)

	tokens := token.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	authMW := middleware.AuthMiddleware(tokens)
	idempotency := middleware.Idempotency(rdb, logger)

	// --- Services ---
	authService := auth.NewService(authRepo, tokens, logger)
	employeeService := employee.NewService(db, employeeRepo, counterRepo, outboxRepo, rdb, m, logger)
	employeeSalaryService := employeesalary.NewService(db, employeeSalaryRepo, logger)
	incrementService := increment.NewService(db, incrementRepo, logger)
	leavePolicyService := leavepolicy.NewService(db, leavePolicyRepo, rdb, m, logger)
	leaveService := leave.NewService(db, leaveRepo, leavePolicyService, outboxRepo, m, logger)
	salarySlipService := salaryslip.NewService(db, salarySlipRepo, leavePolicyService, outboxRepo, m, logger)
	taskService := task.NewService(db, taskRepo)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := incrementService.SeedDefaultPolicy(ctx); err != nil {
		return err
	}

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, cfg.Server.Mode == gin.ReleaseMode, int(cfg.Auth.RefreshTokenTTL.Seconds()))
	employeeHandler := employee.NewHandler(employeeService, logger)
	employeeSalaryHandler := employeesalary.NewHandler(employeeSalaryService, logger)
	incrementHandler := increment.NewHandler(incrementService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	leavePolicyHandler := leavepolicy.NewHandler(leavePolicyService)
	rbacHandler := rbac.NewHandler(rbacService)
	salarySlipHandler := salaryslip.NewHandler(salarySlipService, logger)
	taskHandler := task.NewHandler(taskService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, authMW)
		employee.RegisterRoutes(api, employeeHandler, rbacService, authMW, logger)
		employeesalary.RegisterRoutes(api, employeeSalaryHandler, rbacService, authMW)
		increment.RegisterRoutes(api, incrementHandler, rbacService, authMW)
		leave.RegisterRoutes(api, leaveHandler, rbacService, authMW, idempotency)
		leavepolicy.RegisterRoutes(api, leavePolicyHandler, rbacService, authMW)
		rbac.RegisterRoutes(api, rbacHandler, authMW)
		salaryslip.RegisterRoutes(api, salarySlipHandler, rbacService, authMW, idempotency)
		task.RegisterRoutes(api, taskHandler, rbacService, authMW)
	}

	return nil
}
