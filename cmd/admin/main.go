package main

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	appauth "github.com/xiebiao/bookstore-admin/internal/application/auth"
	appform "github.com/xiebiao/bookstore-admin/internal/application/form"
	"github.com/xiebiao/bookstore-admin/internal/application/listing"
	"github.com/xiebiao/bookstore-admin/internal/application/mutation"
	"github.com/xiebiao/bookstore-admin/internal/domain/resource"
	"github.com/xiebiao/bookstore-admin/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-admin/internal/infrastructure/identity"
	"github.com/xiebiao/bookstore-admin/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookstore-admin/internal/infrastructure/upstream"
	"github.com/xiebiao/bookstore-admin/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-admin/internal/interface/http/middleware"
	"github.com/xiebiao/bookstore-admin/pkg/jwt"
	"github.com/xiebiao/bookstore-admin/pkg/metrics"
	"github.com/xiebiao/bookstore-admin/pkg/mq"
	"github.com/xiebiao/bookstore-admin/pkg/response"
	"github.com/xiebiao/bookstore-admin/pkg/tracing"
)

// main 管理后台BFF入口
// 说明：手动依赖注入（wire.go提供编译期生成版本，二者保持一致）
func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 上游API: %s\n", cfg.Upstream.BaseURL)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 可观测性
	metrics.InitMetrics()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer("bookstore-admin", cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatalf("初始化链路追踪失败: %v", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("关闭链路追踪失败: %v", err)
			}
		}()
	}

	// 3. Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 4. 审计事件发布（可选）
	var auditPublisher mutation.AuditPublisher
	if cfg.MQ.Enabled {
		publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
		if err != nil {
			log.Fatalf("初始化MQ失败: %v", err)
		}
		defer publisher.Close()
		auditPublisher = publisher
	}

	// 5. 依赖注入（手动组装）
	// 基础设施层
	registry := resource.NewRegistry()
	upstreamClient := upstream.NewClient(cfg)
	gateway := upstream.NewGateway(upstreamClient)
	identityClient := identity.NewClient(cfg)
	sessionStore := redis.NewSessionStore(redisClient)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 应用层
	listCache := listing.NewCache(gateway)
	listService := listing.NewService(registry, listCache)
	dispatcher := mutation.NewDispatcher(registry, gateway, listCache, auditPublisher)
	formManager := appform.NewManager(registry, dispatcher, appform.DefaultTTL)
	defer formManager.Stop()
	authService := appauth.NewService(identityClient, sessionStore, jwtManager)

	// 接口层
	resourceHandler := handler.NewResourceHandler(listService, dispatcher)
	formHandler := handler.NewFormHandler(formManager)
	authHandler := handler.NewAuthHandler(authService)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	// 6. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS))

	// 7. 注册路由
	registerRoutes(r, resourceHandler, formHandler, authHandler, authMiddleware)

	// 8. 启动服务
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	fmt.Printf("\n🚀 管理后台服务启动成功！\n")
	fmt.Printf("   访问地址: http://localhost%s\n", addr)
	fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
	fmt.Printf("   API文档:  http://localhost%s/swagger/index.html\n", addr)
	fmt.Printf("   监控指标: http://localhost%s/metrics\n", addr)
	fmt.Printf("\n按Ctrl+C停止服务\n\n")

	if err := r.Run(addr); err != nil {
		log.Fatalf("启动服务失败: %v", err)
	}
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	resourceHandler *handler.ResourceHandler,
	formHandler *handler.FormHandler,
	authHandler *handler.AuthHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// 监控指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/admin/api/v1")
	{
		// 认证（登录公开，登出需带Token）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
		}

		// 资源CRUD（全部需要登录）
		resources := v1.Group("/resources")
		resources.Use(authMiddleware.RequireAuth())
		{
			resources.GET("/:resource", resourceHandler.List)
			resources.POST("/:resource", resourceHandler.Create)
			resources.PUT("/:resource/:id", resourceHandler.Update)
			resources.DELETE("/:resource/:id", resourceHandler.Delete)
		}

		// 表单会话（全部需要登录）
		forms := v1.Group("/forms")
		forms.Use(authMiddleware.RequireAuth())
		{
			forms.POST("", formHandler.Open)
			forms.PATCH("/:id/fields", formHandler.SetField)
			forms.POST("/:id/submit", formHandler.Submit)
			forms.DELETE("/:id", formHandler.Close)
		}
	}
}
