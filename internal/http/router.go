package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/fintrackhq/fintrack/internal/auth"
	"github.com/fintrackhq/fintrack/internal/cache"
	"github.com/fintrackhq/fintrack/internal/config"
	"github.com/fintrackhq/fintrack/internal/http/handlers"
	"github.com/fintrackhq/fintrack/internal/http/middlewares"
	"github.com/fintrackhq/fintrack/internal/observability"
	"github.com/fintrackhq/fintrack/internal/repo/postgres"
)

const serviceName = "fintrack"

// NewRouter wires repositories, middleware, and routes. The pool and
// summary cache are constructed by the caller and handed in, so the
// process owns their lifecycle.
func NewRouter(cfg config.Config, log *slog.Logger, pool *pgxpool.Pool, summaries cache.SummaryStore, pingCache func() error) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// metrics registry with process/go collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(registry)

	// middleware, outermost first
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(otelgin.Middleware(serviceName))
	r.Use(prom.GinMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	// health + metrics
	pingDB := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(pingDB, pingCache)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	transactionsRepo := postgres.NewTransactionsRepo(pool, prom)
	refreshRepo := postgres.NewRefreshTokensRepo(pool)

	// auth plumbing
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	sessions := auth.NewSessions(jwtManager, refreshRepo)
	authMW := middlewares.NewAuthMiddleware(jwtManager, usersRepo)

	// handlers
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, sessions, cfg)
	transactionsHandler := handlers.NewTransactionsHandler(transactionsRepo, summaries)

	authLimiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	apiLimiter := middlewares.NewRateLimiter(cfg.APIRateLimit, cfg.APIRateWindow)

	// register/login stay outside the auth gateway
	users := r.Group("/api/users")
	users.Use(middlewares.RequireJSON())
	users.Use(authLimiter.Middleware(middlewares.KeyByIP))
	{
		users.POST("/register", authHandler.Register)
		users.POST("/login", authHandler.Login)
	}

	// refresh/logout authenticate via the refresh cookie, not the gateway
	session := r.Group("/auth")
	session.Use(authLimiter.Middleware(middlewares.KeyByIP))
	{
		session.POST("/refresh", authHandler.Refresh)
		session.POST("/logout", authHandler.Logout)
		session.GET("/me", authMW.RequireAuth(), authHandler.Me)
	}

	// everything below passes the auth gateway
	transactions := r.Group("/api/transactions")
	transactions.Use(authMW.RequireAuth())
	transactions.Use(middlewares.RequireJSON())
	transactions.Use(apiLimiter.Middleware(middlewares.KeyByUserOrIP))
	{
		transactions.POST("", transactionsHandler.Create)
		transactions.GET("", transactionsHandler.List)
		transactions.GET("/summary", transactionsHandler.Summary)
		transactions.GET("/month/:year/:month", transactionsHandler.ListByMonth)
		transactions.GET("/:id", transactionsHandler.GetByID)
		transactions.PUT("/:id", transactionsHandler.Update)
		transactions.DELETE("/:id", transactionsHandler.Delete)
	}

	return r
}
