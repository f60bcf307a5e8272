package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guplink/guplink-api/internal/config"
	"github.com/guplink/guplink-api/internal/database"
	"github.com/guplink/guplink-api/internal/handlers"
	authmw "github.com/guplink/guplink-api/internal/middleware"
	"github.com/guplink/guplink-api/internal/models"
	"github.com/guplink/guplink-api/internal/ratelimit"
	"github.com/guplink/guplink-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	apiKeyService := services.NewAPIKeyService(db)
	urlService := services.NewURLService(db)
	clickService := services.NewClickService(db)
	analyticsService := services.NewAnalyticsService(clickService, urlService)

	usageLogger := services.NewUsageLogger(db)
	defer usageLogger.Close()

	authenticator := services.NewAuthenticator(apiKeyService, usageLogger, jwtService)

	var limitStore ratelimit.Store
	if cfg.RedisURL != "" {
		redisStore, err := ratelimit.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisStore.Close()
		limitStore = redisStore
		log.Println("Rate limiting backed by redis")
	} else {
		limitStore = ratelimit.NewMemoryStore()
	}

	authHandler := handlers.NewAuthHandler(cfg, userService, tokenService, jwtService)
	userHandler := handlers.NewUserHandler(userService)
	apiKeyHandler := handlers.NewAPIKeyHandler(apiKeyService)
	urlHandler := handlers.NewURLHandler(urlService, cfg.BaseURL)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, urlService)
	qrHandler := handlers.NewQRHandler(urlService, cfg.BaseURL)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	// Unauthenticated surface.
	public := api.Group("")
	public.Use(authmw.RateLimit(limitStore, ratelimit.Public))
	public.Get("/auth/:provider/consent", authHandler.GetConsentURL)
	public.Get("/auth/:provider/callback", authHandler.Callback)
	public.Post("/auth/exchange", authHandler.ExchangeCode)
	public.Post("/auth/refresh", authHandler.RefreshToken)
	public.Post("/auth/logout", authHandler.Logout)
	public.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	// Each category gets its own group so its counter and scope guard stay
	// independent of the others.
	read := api.Group("")
	read.Use(authmw.RateLimit(limitStore, ratelimit.Read))
	read.Use(authmw.Auth(authenticator))
	read.Use(authmw.RequireScope(models.ScopeRead))
	read.Get("/urls", urlHandler.List)
	read.Get("/urls/:id", urlHandler.Get)
	read.Get("/users/me", userHandler.GetMe)

	createURL := api.Group("")
	createURL.Use(authmw.RateLimit(limitStore, ratelimit.CreateURL))
	createURL.Use(authmw.Auth(authenticator))
	createURL.Use(authmw.RequireScope(models.ScopeWrite))
	createURL.Post("/urls", urlHandler.Create)

	write := api.Group("")
	write.Use(authmw.RateLimit(limitStore, ratelimit.Write))
	write.Use(authmw.Auth(authenticator))
	write.Use(authmw.RequireScope(models.ScopeWrite))
	write.Patch("/urls/:id", urlHandler.Update)
	write.Delete("/urls/:id", urlHandler.Delete)
	write.Patch("/users/me", userHandler.UpdateMe)
	write.Post("/auth/logout-all", authHandler.LogoutAll)

	qr := api.Group("")
	qr.Use(authmw.RateLimit(limitStore, ratelimit.QR))
	qr.Use(authmw.Auth(authenticator))
	qr.Use(authmw.RequireScope(models.ScopeRead))
	qr.Get("/urls/:id/qr", qrHandler.Generate)

	analytics := api.Group("")
	analytics.Use(authmw.RateLimit(limitStore, ratelimit.Analytics))
	analytics.Use(authmw.Auth(authenticator))
	analytics.Use(authmw.RequireScope(models.ScopeRead))
	analytics.Get("/analytics", analyticsHandler.Summary)
	analytics.Get("/urls/:id/analytics", analyticsHandler.URLSummary)

	// Key management is session or admin-key only.
	keys := api.Group("")
	keys.Use(authmw.RateLimit(limitStore, ratelimit.APIKeys))
	keys.Use(authmw.Auth(authenticator))
	keys.Use(authmw.RequireScope(models.ScopeAdmin))
	keys.Post("/keys", apiKeyHandler.Create)
	keys.Get("/keys", apiKeyHandler.List)
	keys.Patch("/keys/:id", apiKeyHandler.Update)
	keys.Post("/keys/:id/revoke", apiKeyHandler.Revoke)
	keys.Delete("/keys/:id", apiKeyHandler.Delete)

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			_ = tokenService.CleanupExpired(context.Background())
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
