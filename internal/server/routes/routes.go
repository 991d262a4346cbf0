package routes

import (
	"github.com/mir5/ipadmin/internal/server/handlers"
	"github.com/mir5/ipadmin/internal/server/middleware"
	"github.com/mir5/ipadmin/internal/server/services"
	"github.com/mir5/ipadmin/internal/shared/auth"
	"github.com/mir5/ipadmin/internal/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers 路由依赖的处理器集合
type Handlers struct {
	Auth       *handlers.AuthHandler
	User       *handlers.UserHandler
	Vlan       *handlers.VlanHandler
	Pool       *handlers.PoolHandler
	Request    *handlers.RequestHandler
	Assignment *handlers.AssignmentHandler
	Dashboard  *handlers.DashboardHandler
	Report     *handlers.ReportHandler
}

// NewHandlers 从服务层装配处理器
func NewHandlers(
	userService *auth.UserService,
	jwtService *auth.JWTService,
	sessionManager *auth.SessionManager,
	vlanService *services.VlanService,
	poolService *services.PoolService,
	requestService *services.RequestService,
	assignmentService *services.AssignmentService,
	dashboardService *services.DashboardService,
	reportService *services.ReportService,
) *Handlers {
	return &Handlers{
		Auth:       handlers.NewAuthHandler(userService, jwtService, sessionManager),
		User:       handlers.NewUserHandler(userService),
		Vlan:       handlers.NewVlanHandler(vlanService),
		Pool:       handlers.NewPoolHandler(poolService),
		Request:    handlers.NewRequestHandler(requestService),
		Assignment: handlers.NewAssignmentHandler(assignmentService, requestService),
		Dashboard:  handlers.NewDashboardHandler(dashboardService),
		Report:     handlers.NewReportHandler(reportService),
	}
}

// SetupRoutes 设置服务端路由
func SetupRoutes(h *Handlers, jwtService *auth.JWTService) *gin.Engine {
	r := gin.New()

	// 全局中间件
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.SecurityMiddleware())

	// 健康检查 (无需认证)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "IP Admin Server is running",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupAPIRoutes(r, h, jwtService)

	return r
}

// setupAPIRoutes 设置API路由
func setupAPIRoutes(r *gin.Engine, h *Handlers, jwtService *auth.JWTService) {
	api := r.Group("/api/v1")
	{
		// 公共路由 (无需认证)，登录接口带限流
		public := api.Group("")
		{
			loginRate, loginBurst := 5, 10
			if cfg := config.GetGlobalServerConfig(); cfg != nil {
				loginRate = cfg.Auth.LoginRateLimit
				loginBurst = cfg.Auth.LoginBurst
			}
			public.POST("/auth/login", middleware.LoginRateLimitMiddleware(loginRate, loginBurst), h.Auth.Login)
			public.POST("/auth/refresh", h.Auth.RefreshToken)
		}

		// 认证路由 (需要JWT认证)
		authed := api.Group("")
		authed.Use(middleware.JWTAuthMiddleware(jwtService))
		{
			setupAuthRoutes(authed, h)
			setupUserRoutes(authed, h)
			setupIPAMRoutes(authed, h)
		}
	}
}

// setupAuthRoutes 认证相关路由
func setupAuthRoutes(rg *gin.RouterGroup, h *Handlers) {
	rg.GET("/auth/me", h.Auth.GetCurrentUser)
	rg.POST("/auth/logout", h.Auth.Logout)
	rg.POST("/auth/change-password", h.Auth.ChangePassword)
}

// setupUserRoutes 用户管理路由 (仅管理员)
func setupUserRoutes(rg *gin.RouterGroup, h *Handlers) {
	admin := rg.Group("/users")
	admin.Use(middleware.AdminRequired())
	{
		admin.GET("", h.User.ListUsers)
		admin.POST("", h.User.CreateUser)
	}
}

// setupIPAMRoutes IP地址管理路由
func setupIPAMRoutes(rg *gin.RouterGroup, h *Handlers) {
	// VLAN: 列表所有登录用户可见，管理操作仅限管理员
	rg.GET("/vlans", h.Vlan.ListVlans)
	rg.GET("/vlans/:id", h.Vlan.GetVlan)
	rg.GET("/vlans/:id/pools", h.Pool.ListActivePools)

	// 申请单: 用户提交与查询自己的申请
	rg.POST("/requests", h.Request.SubmitRequest)
	rg.GET("/requests/my", h.Request.ListMyRequests)
	rg.GET("/requests/:id", h.Request.GetRequest)
	rg.GET("/requests/:id/assignments", h.Assignment.ListByRequest)

	// 分配记录: 用户查看自己的、维护备注
	rg.GET("/assignments/my", h.Assignment.ListMyAssignments)
	rg.PUT("/assignments/:id/description", h.Assignment.UpdateDescription)

	// 管理员路由
	admin := rg.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.POST("/vlans", h.Vlan.CreateVlan)
		admin.PUT("/vlans/:id", h.Vlan.UpdateVlan)
		admin.DELETE("/vlans/:id", h.Vlan.DeleteVlan)

		admin.GET("/pools", h.Pool.ListPools)
		admin.GET("/pools/:id", h.Pool.GetPool)
		admin.POST("/pools", h.Pool.CreatePool)
		admin.PUT("/pools/:id", h.Pool.UpdatePool)
		admin.DELETE("/pools/:id", h.Pool.DeletePool)

		admin.GET("/requests", h.Request.ListRequests)
		admin.GET("/requests/:id/pool-stats", h.Request.PoolStats)
		admin.POST("/requests/:id/review", h.Request.ReviewRequest)
		admin.DELETE("/requests/:id", h.Request.DeleteRequest)

		admin.PUT("/assignments/:id/monitor", h.Assignment.SetMonitored)

		admin.GET("/dashboard", h.Dashboard.GetStats)
		admin.GET("/reports/assignments", h.Report.ExportAssignments)
	}
}
