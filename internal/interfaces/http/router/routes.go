package router

import (
	"github.com/charro/storefront/internal/infrastructure/config"
	"github.com/charro/storefront/internal/infrastructure/logger"
	"github.com/charro/storefront/internal/interfaces/http/handler"
	"github.com/charro/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers mounted by NewEngine
type Handlers struct {
	Product *handler.ProductHandler
	Auth    *handler.AuthHandler
	Order   *handler.OrderHandler
	Admin   *handler.AdminHandler
	System  *handler.SystemHandler
}

// Dependencies are what NewEngine needs besides the handlers
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger
	Tokens middleware.TokenVerifier
	Users  middleware.UserLookup
	// Nil leaves HTTP metrics off
	Meter metric.Meter
}

// NewEngine builds the gin engine with the global middleware chain and every
// API route. The returned stop function ends the rate limiter pruners.
func NewEngine(deps Dependencies, h Handlers) (*gin.Engine, func(), error) {
	cfg := deps.Config
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := middleware.SetupValidator(); err != nil {
		return nil, nil, err
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, nil, err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.IsProduction()

	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			Enabled:     cfg.Telemetry.Enabled,
			ServiceName: cfg.Telemetry.ServiceName,
		}),
		middleware.SpanAttributes(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
			Enabled: cfg.Telemetry.Enabled,
			Meter:   deps.Meter,
			Logger:  log,
		}),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.CORSWithConfig(cors),
		middleware.SecureWithConfig(security),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	stop := make(chan struct{})
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		go limiter.RunPruner(stop)
		engine.Use(middleware.RateLimit(limiter))
	}

	engine.GET("/health", h.System.Health)
	engine.GET("/ready", h.System.Ready)

	jwtAuth := middleware.JWTAuth(deps.Tokens, log)
	backOffice := middleware.RequireBackOffice(deps.Users, log)

	system := NewDomainGroup("system", "").
		GET("/health", h.System.Health).
		GET("/system/info", h.System.Info)

	catalog := NewDomainGroup("catalog", "").
		GET("/products", h.Product.List).
		GET("/products/:slug", h.Product.GetBySlug).
		GET("/search/:query", h.Product.Search)

	user := NewDomainGroup("user", "/user")
	authHandlers := func(final gin.HandlerFunc) []gin.HandlerFunc {
		if !cfg.HTTP.AuthRateLimitEnabled {
			return []gin.HandlerFunc{final}
		}
		return []gin.HandlerFunc{middleware.RateLimit(authLimiter(cfg, stop)), final}
	}
	user.POST("/login", authHandlers(h.Auth.Login)...).
		POST("/register", authHandlers(h.Auth.Register)...).
		GET("/validate-token", h.Auth.ValidateToken)

	orders := NewDomainGroup("orders", "/orders").
		Use(jwtAuth, middleware.LoadRole(deps.Users)).
		POST("", h.Order.Create).
		GET("", h.Order.List).
		GET("/:id", h.Order.GetByID)

	admin := NewDomainGroup("admin", "/admin").
		Use(jwtAuth, backOffice).
		GET("/dashboard", h.Admin.Dashboard).
		GET("/users", h.Admin.ListUsers).
		PUT("/users", h.Admin.ChangeUserRole).
		GET("/orders", h.Admin.ListOrders).
		POST("/orders/:id/pay", h.Admin.MarkOrderPaid).
		GET("/products", h.Admin.ListProducts).
		POST("/products", h.Admin.CreateProduct).
		GET("/products/:id", h.Admin.GetProduct).
		PUT("/products/:id", h.Admin.UpdateProduct).
		POST("/upload", h.Admin.UploadImage)

	NewRouter(engine).Register(system, catalog, user, orders, admin).Setup()

	return engine, func() { close(stop) }, nil
}

func authLimiter(cfg *config.Config, stop <-chan struct{}) *middleware.RateLimiter {
	limiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
	go limiter.RunPruner(stop)
	return limiter
}
