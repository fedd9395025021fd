package routes

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/websap/backend/internal/api/handlers"
	"github.com/websap/backend/internal/api/middleware"
	"github.com/websap/backend/internal/config"
	"github.com/websap/backend/internal/database"
	"github.com/websap/backend/internal/logger"
	"github.com/websap/backend/internal/metrics"
	"github.com/websap/backend/internal/security"
	"github.com/websap/backend/internal/services"
)

const (
	msgRateLimited      = "Demasiadas solicitudes, por favor inténtelo más tarde."
	msgLoginRateLimited = "Demasiados intentos de inicio de sesión, inténtelo más tarde."
)

// Register migrates the schema, installs the global middleware chain and
// wires up the API routes.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) error {
	if err := database.Migrate(db); err != nil {
		return err
	}
	// X-Forwarded-For is honored only from these peers; the blocklist and
	// the rate limiters key on the resulting client IP.
	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}

	verbose := !cfg.IsProduction()

	securityService := services.NewSecurityService(db)
	notificationService := services.NewNotificationService(db, cfg.AlertURLs)
	jwtManager := services.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	authService := services.NewAuthService(db, jwtManager)
	userService := services.NewUserService(db)

	var verifier services.TokenVerifier = jwtManager
	if cfg.DevAuthBypass {
		logger.Log().Warn("development auth bypass enabled: requests without a valid token act as " + services.DevUser.Email)
		verifier = services.NewDevVerifier(jwtManager)
	}

	policy := security.DefaultPolicy
	if cfg.Security.FailClosed {
		policy = security.Policy{Blocklist: security.FailClosed, Rules: security.FailClosed}
	}
	gatekeeper := security.New(securityService, securityService, securityService,
		security.WithPolicy(policy),
		security.WithStoreTimeout(cfg.Security.StoreTimeout),
	)

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Recovery(verbose),
		middleware.ErrorHandler(verbose),
		gatekeeper.Middleware(),
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{
			IsDevelopment:  cfg.Environment == "development",
			ServesFrontend: cfg.FrontendDir != "",
		}),
		middleware.CORS(cfg.CORSOrigins),
		middleware.RateLimit(middleware.NewRateLimiter(cfg.Security.RateLimit, time.Minute), "global", msgRateLimited),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.GET("/ping", handlers.Ping)

	authMiddleware := middleware.AuthMiddleware(verifier)
	requireAdmin := middleware.RequireAdmin()
	requireSuperAdmin := middleware.RequireSuperAdmin()

	authHandler := handlers.NewAuthHandler(authService)
	securityHandler := handlers.NewSecurityHandler(securityService, notificationService)
	userHandler := handlers.NewUserHandler(userService)
	platoHandler := handlers.NewPlatoHandler(db)
	restauranteHandler := handlers.NewRestauranteHandler(db)
	reservaHandler := handlers.NewReservaHandler(db, notificationService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	systemHandler := handlers.NewSystemHandler(db)

	api := router.Group("/api")
	api.GET("/health-check", handlers.HealthHandler(db))

	loginLimiter := middleware.NewRateLimiter(cfg.Security.AuthRateLimit, 15*time.Minute)
	api.POST("/auth/login", middleware.RateLimit(loginLimiter, "login", msgLoginRateLimited), authHandler.Login)
	api.POST("/auth/register", authHandler.Register)
	api.GET("/auth/me", authMiddleware, authHandler.Me)

	sec := api.Group("/security")
	{
		sec.POST("/log-suspicious", securityHandler.LogSuspicious)

		admin := sec.Group("", authMiddleware, requireAdmin)
		admin.POST("/should-challenge", securityHandler.ShouldChallenge)
		admin.GET("/activity-summary", securityHandler.ActivitySummary)
		admin.GET("/rules", securityHandler.ListRules)
		admin.GET("/blocked-ips", securityHandler.ListBlockedIPs)
		admin.GET("/audit", securityHandler.AuditLog)

		super := sec.Group("", authMiddleware, requireSuperAdmin)
		super.POST("/block-ip", securityHandler.BlockIP)
		super.DELETE("/blocked-ips/:ip", securityHandler.UnblockIP)
		super.PUT("/rules", securityHandler.UpdateRules)
		super.DELETE("/rules/:id", securityHandler.DeleteRule)
	}

	api.GET("/platos", platoHandler.List)
	api.GET("/platos/:id", platoHandler.Get)
	platosAdmin := api.Group("/platos", authMiddleware, requireAdmin)
	platosAdmin.POST("", platoHandler.Create)
	platosAdmin.PUT("/:id", platoHandler.Update)
	platosAdmin.DELETE("/:id", platoHandler.Delete)

	protected := api.Group("", authMiddleware)
	{
		protected.GET("/restaurantes", restauranteHandler.List)
		protected.GET("/restaurantes/:id", restauranteHandler.Get)
		protected.POST("/restaurantes", requireAdmin, restauranteHandler.Create)
		protected.PUT("/restaurantes/:id", requireAdmin, restauranteHandler.Update)
		protected.DELETE("/restaurantes/:id", requireAdmin, restauranteHandler.Delete)

		protected.GET("/roles", userHandler.ListRoles)
		protected.GET("/usuarios", requireAdmin, userHandler.List)
		protected.POST("/usuarios", requireAdmin, userHandler.Create)
		protected.GET("/usuarios/:id", requireAdmin, userHandler.Get)
		protected.PUT("/usuarios/:id", requireAdmin, userHandler.Update)
		protected.DELETE("/usuarios/:id", requireAdmin, userHandler.Delete)
		protected.PUT("/usuarios/:id/roles", requireSuperAdmin, userHandler.SetRoles)

		protected.GET("/reservas", reservaHandler.List)
		protected.POST("/reservas", reservaHandler.Create)

		protected.GET("/notificaciones", notificationHandler.List)
		protected.POST("/notificaciones", notificationHandler.Create)
		protected.POST("/notificaciones/read-all", notificationHandler.MarkAllAsRead)
		protected.POST("/notificaciones/:id/read", notificationHandler.MarkAsRead)
		protected.DELETE("/notificaciones/:id", notificationHandler.Delete)

		protected.GET("/system/db-status", requireAdmin, systemHandler.DatabaseStatus)
		protected.GET("/system/my-ip", systemHandler.GetMyIP)
	}

	return nil
}
