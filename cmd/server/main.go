package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mir5/ipadmin/internal/server/database"
	"github.com/mir5/ipadmin/internal/server/routes"
	"github.com/mir5/ipadmin/internal/server/services"
	"github.com/mir5/ipadmin/internal/shared/auth"
	"github.com/mir5/ipadmin/internal/shared/config"
	"github.com/mir5/ipadmin/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

var (
	configFile  = flag.String("config", "configs/server.yaml", "配置文件路径")
	versionFlag = flag.Bool("version", false, "显示版本信息")
	help        = flag.Bool("help", false, "显示帮助信息")
	initDB      = flag.Bool("init", false, "初始化数据库和默认数据")
)

// 这些变量可以在构建时通过-ldflags设置
var (
	version   string = "1.0.0"
	buildTime string = "2025-01-01"
)

const (
	AppName = "IP Admin Server"
)

func init() {
	flag.Parse()

	if *versionFlag {
		log.Printf("%s v%s (built at %s)", AppName, version, buildTime)
		os.Exit(0)
	}

	if *help {
		flag.Usage()
		os.Exit(0)
	}
}

func main() {
	log.Printf("启动 %s v%s", AppName, version)

	// 加载配置
	cfg, err := config.LoadServerConfig(*configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	config.SetGlobalServerConfig(cfg)

	// 设置Gin模式
	gin.SetMode(cfg.App.Mode)

	// 处理数据库路径 - 转换为绝对路径
	dbPath, err := utils.GetAbsolutePath(cfg.Database.Path)
	if err != nil {
		log.Fatalf("获取数据库路径失败: %v", err)
	}
	log.Printf("数据库路径: %s", dbPath)

	// 初始化数据库
	if *initDB {
		// 强制初始化模式
		if err := database.InitDatabaseWithOptions(dbPath, true); err != nil {
			log.Fatalf("初始化数据库失败: %v", err)
		}
		log.Println("数据库强制初始化完成")
		return
	}
	if err := database.InitDatabase(dbPath); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	log.Println("数据库初始化成功")

	// 创建服务层
	metrics := services.NewMetrics()
	ledgerService := services.NewLedgerService()
	allocatorService := services.NewAllocatorService(ledgerService)
	requestService := services.NewRequestService(allocatorService, metrics)
	vlanService := services.NewVlanService()
	poolService := services.NewPoolService()
	assignmentService := services.NewAssignmentService()
	dashboardService := services.NewDashboardService(poolService)
	reportService := services.NewReportService()

	// 创建认证服务
	jwtService := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessExpiry, cfg.Auth.RefreshExpiry)
	userService := auth.NewUserService()
	sessionManager := auth.NewSessionManager(cfg.Auth.SessionTimeout)

	// 启动定时任务调度器
	cronScheduler := services.NewCronScheduler(sessionManager, poolService)
	if err := cronScheduler.Start(); err != nil {
		log.Fatalf("启动定时任务调度器失败: %v", err)
	}
	defer cronScheduler.Stop()

	// 设置路由
	h := routes.NewHandlers(
		userService, jwtService, sessionManager,
		vlanService, poolService, requestService,
		assignmentService, dashboardService, reportService,
	)
	router := routes.SetupRoutes(h, jwtService)

	// 创建HTTP服务器
	server := &http.Server{
		Addr:           cfg.App.Listen,
		Handler:        router,
		ReadTimeout:    cfg.App.ReadTimeout,
		WriteTimeout:   cfg.App.WriteTimeout,
		IdleTimeout:    cfg.App.IdleTimeout,
		MaxHeaderBytes: cfg.App.MaxHeaderBytes << 20, // MB to bytes
	}

	// 启动HTTP服务器
	go func() {
		log.Printf("HTTP服务器启动在 %s", cfg.App.Listen)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP服务器启动失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务器...")
	gracefulShutdown(server)
}

// gracefulShutdown 优雅关闭服务器
func gracefulShutdown(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("关闭HTTP服务器失败: %v", err)
	}

	if err := database.Close(); err != nil {
		log.Printf("关闭数据库连接失败: %v", err)
	} else {
		log.Println("数据库连接已关闭")
	}

	log.Println("服务器已关闭")
}
