package app

import (
	"database/sql"
	"net/http"
	"time"

	"go-hrdesk/internal/config"
	"go-hrdesk/internal/employee"
	"go-hrdesk/internal/holiday"
	"go-hrdesk/internal/leave"
	"go-hrdesk/internal/leavebalance"
	"go-hrdesk/internal/leavetype"
	"go-hrdesk/internal/messaging/kafka"
	"go-hrdesk/internal/middleware"
	"go-hrdesk/internal/rbac"
	"go-hrdesk/internal/rbac/infra"
	"go-hrdesk/internal/shared/cache"
	"go-hrdesk/internal/shared/counter"
	"go-hrdesk/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const cacheTTL = 10 * time.Minute

func registerModules(
	router *gin.Engine,
	cfg *config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	readThrough := cache.NewReadThrough(rdb, cacheTTL, nil)

	// --- Repositories ---
	counterRepo := counter.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	leaveBalanceRepo := leavebalance.NewRepository(db)
	leaveRepo := leave.NewRepository(gormDB)
	leaveTypeRepo := leavetype.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(cfg.Leave.ApproverRoles...)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer)

	// --- Services ---
	leaveTypeService := leavetype.NewService(leaveTypeRepo, readThrough)
	holidayService := holiday.NewService(holidayRepo, readThrough)
	leaveBalanceService := leavebalance.NewService(db, leaveBalanceRepo)
	employeeService := employee.NewService(db, employeeRepo, counterRepo, outboxRepo, readThrough)
	leaveService := leave.NewService(db, leaveRepo, leave.Dependencies{
		Outbox:     outboxRepo,
		Counter:    counterRepo,
		Holidays:   holidayService,
		Balances:   leaveBalanceService,
		LeaveTypes: leaveTypeService,
		Authorizer: rbacService,
	})

	// --- Handlers ---
	employeeHandler := employee.NewHandler(employeeService)
	holidayHandler := holiday.NewHandler(holidayService)
	leaveBalanceHandler := leavebalance.NewHandler(leaveBalanceService)
	leaveHandler := leave.NewHandler(leaveService)
	leaveTypeHandler := leavetype.NewHandler(leaveTypeService)
	rbacHandler := rbac.NewHandler(rbacService)

	auth := middleware.AuthMiddleware(cfg.Auth.JWTSecret)

	router.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	})

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		employee.RegisterRoutes(api, employeeHandler, auth, rbacService)
		holiday.RegisterRoutes(api, holidayHandler, auth, rbacService)
		leavebalance.RegisterRoutes(api, leaveBalanceHandler, auth, rbacService)
		leave.RegisterRoutes(api, leaveHandler, auth, rbacService, rdb)
		leavetype.RegisterRoutes(api, leaveTypeHandler, auth, rbacService)
		rbac.RegisterRoutes(api, rbacHandler, auth)
	}

	return nil
}
