//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 运行 `wire gen ./cmd/admin` 生成wire_gen.go。
// 手动注入版本见main.go，两边的依赖链保持一致：
// Gateway ← Cache ← Service/Dispatcher ← Handler ← Engine

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

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
	"github.com/xiebiao/bookstore-admin/pkg/mq"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,
	redis.NewClient,
	provideSessionStore,
	provideJWTManager,
	identity.NewClient,
	upstream.NewClient,
	upstream.NewGateway,
	wire.Bind(new(resource.Gateway), new(*upstream.Gateway)),
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	resource.NewRegistry,
	listing.NewCache,
	listing.NewService,
	provideDispatcher,
	provideFormManager,
	provideAuthService,
)

// interfaceSet 接口层依赖
var interfaceSet = wire.NewSet(
	handler.NewResourceHandler,
	handler.NewFormHandler,
	handler.NewAuthHandler,
	middleware.NewAuthMiddleware,
)

// provideSessionStore 从Redis客户端创建会话存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideAuditPublisher 审计事件发布器（未启用MQ时为nil，派发器会跳过发布）
func provideAuditPublisher(cfg *config.Config) (mutation.AuditPublisher, error) {
	if !cfg.MQ.Enabled {
		return nil, nil
	}
	return mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
}

// provideDispatcher 变更派发器
func provideDispatcher(cfg *config.Config, registry *resource.Registry, gateway resource.Gateway, cache *listing.Cache) (*mutation.Dispatcher, error) {
	audit, err := provideAuditPublisher(cfg)
	if err != nil {
		return nil, err
	}
	return mutation.NewDispatcher(registry, gateway, cache, audit), nil
}

// provideFormManager 表单会话管理器
func provideFormManager(registry *resource.Registry, dispatcher *mutation.Dispatcher) *appform.Manager {
	return appform.NewManager(registry, dispatcher, appform.DefaultTTL)
}

// provideAuthService 认证用例
func provideAuthService(identityClient *identity.Client, sessions *redis.SessionStore, jwtManager *jwt.Manager) *appauth.Service {
	return appauth.NewService(identityClient, sessions, jwtManager)
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(
	cfg *config.Config,
	resourceHandler *handler.ResourceHandler,
	formHandler *handler.FormHandler,
	authHandler *handler.AuthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS))

	registerRoutes(r, resourceHandler, formHandler, authHandler, authMiddleware)

	return r
}

// InitializeApp 初始化整个应用
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		applicationSet,
		interfaceSet,
		provideGinEngine,
	)
	return nil, nil
}
