package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/balloon_quote/internal/cache"
	"github.com/GTDGit/balloon_quote/internal/config"
	"github.com/GTDGit/balloon_quote/internal/database"
	"github.com/GTDGit/balloon_quote/internal/handler"
	"github.com/GTDGit/balloon_quote/internal/middleware"
	"github.com/GTDGit/balloon_quote/internal/repository"
	"github.com/GTDGit/balloon_quote/internal/service"
	"github.com/GTDGit/balloon_quote/internal/sse"
	"github.com/GTDGit/balloon_quote/internal/utils"
	"github.com/GTDGit/balloon_quote/internal/worker"
)

// main is the entrypoint of the balloon quotation service.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting balloon quote api")
	utils.SetJWTSecret(cfg.JWTSecret)

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db.DB, "migrations"); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 4. Load vendor data
	catalogRepo, err := repository.NewCatalogRepository(cfg.Catalog.DataDir)
	if err != nil {
		log.Error().Err(err).Str("dir", cfg.Catalog.DataDir).Msg("vendor data unavailable")
		fmt.Fprintf(os.Stderr, "vendor data unavailable: %v\n", err)
		os.Exit(1)
	}

	// 5. Initialize repositories
	quotationRepo := repository.NewQuotationRepository(db)
	operatorRepo := repository.NewOperatorRepository(db)
	quotationCache := cache.NewQuotationCache(redisClient, cfg.Persistence.CacheTTL)

	// 6. Initialize services
	hub := sse.NewHub()
	notifier := sse.NewHubNotifier(hub)
	saver := worker.NewSaveDebouncer(cfg.Persistence.SaveDebounce)

	persistenceSvc := service.NewPersistenceService(quotationCache, quotationRepo)
	sessionSvc := service.NewSessionService(
		catalogRepo, persistenceSvc, saver, notifier,
		cfg.Document.PaymentTerms,
		cfg.Persistence.WriteTimeout,
	)
	authSvc := service.NewAuthService(operatorRepo)

	var archive service.Archiver
	if cfg.Archive.Enabled() {
		s3Svc, err := service.NewS3Service(context.Background(), &cfg.Archive)
		if err != nil {
			log.Warn().Err(err).Msg("S3 service initialization failed - documents will not be archived")
		} else {
			archive = s3Svc
			log.Info().Str("bucket", cfg.Archive.Bucket).Msg("Document archive enabled")
		}
	}
	documentSvc := service.NewDocumentService(cfg.Document.ValidDays, archive)

	// 7. Initialize handlers
	loginLimiter := middleware.NewInvalidAuthRateLimiter(5, time.Minute)
	handlers := &Handlers{
		Health: handler.NewHealthHandler(map[string]handler.HealthCheck{
			"database": db.PingContext,
			"redis":    redisClient.Ping,
		}, sessionSvc.Count),
		Auth:      handler.NewAuthHandler(authSvc, loginLimiter),
		Catalog:   handler.NewCatalogHandler(catalogRepo),
		Session:   handler.NewSessionHandler(sessionSvc, documentSvc),
		Quotation: handler.NewQuotationHandler(persistenceSvc, documentSvc, catalogRepo, notifier),
		SSE:       handler.NewSSEHandler(hub, sessionSvc),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSHosts))
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go worker.NewSessionSweeper(sessionSvc, cfg.Session.IdleTimeout, cfg.Session.SweepInterval).Start(ctx)
	go loginLimiter.Cleanup(ctx, 5*time.Minute)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// 16. Persist edits still waiting for their debounce window
	saver.Flush()
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Catalog   *handler.CatalogHandler
	Session   *handler.SessionHandler
	Quotation *handler.QuotationHandler
	SSE       *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware) {
	router.GET("/v1/health", handlers.Health.GetHealth)
	router.POST("/v1/auth/login", handlers.Auth.Login)

	// Vendor data (public)
	vendors := router.Group("/v1/vendors")
	{
		vendors.GET("", handlers.Catalog.ListVendors)
		vendors.GET("/:vendorId/catalog", handlers.Catalog.GetCatalog)
		vendors.GET("/:vendorId/kits", handlers.Catalog.ListKits)
	}

	// Configuration sessions
	sessions := router.Group("/v1/sessions")
	sessions.Use(jwtMiddleware.Handle(), handlers.Session.RequireOwner())
	{
		sessions.POST("", handlers.Session.Create)
		sessions.GET("/:id", handlers.Session.Get)
		sessions.DELETE("/:id", handlers.Session.Close)
		sessions.GET("/:id/categories", handlers.Session.Categories)
		sessions.PUT("/:id/vendor", handlers.Session.SetVendor)

		sessions.POST("/:id/selections", handlers.Session.Select)
		sessions.DELETE("/:id/selections/:itemId", handlers.Session.Remove)
		sessions.PUT("/:id/selections/:itemId/quantity", handlers.Session.SetQuantity)
		sessions.POST("/:id/selections/:itemId/commit", handlers.Session.CommitQuantity)
		sessions.PUT("/:id/selections/:itemId/price", handlers.Session.SetCustomPrice)
		sessions.PUT("/:id/selections/:itemId/description", handlers.Session.SetCustomDescription)
		sessions.POST("/:id/custom-items", handlers.Session.AddCustomItem)
		sessions.POST("/:id/kits/:kitId", handlers.Session.LoadKit)

		sessions.PUT("/:id/discount", handlers.Session.SetDiscount)
		sessions.PUT("/:id/client", handlers.Session.SetClient)
		sessions.PUT("/:id/payment-terms", handlers.Session.SetPaymentTerms)

		sessions.POST("/:id/load/:number", handlers.Session.LoadQuotation)
		sessions.GET("/:id/document", handlers.Session.Document)
		sessions.GET("/:id/events", handlers.SSE.SessionStream)
	}

	// Saved quotations
	quotations := router.Group("/v1/quotations")
	quotations.Use(jwtMiddleware.Handle())
	{
		quotations.GET("", handlers.Quotation.List)
		quotations.GET("/:number", handlers.Quotation.Get)
		quotations.DELETE("/:number", handlers.Quotation.Delete)
		quotations.GET("/:number/document", handlers.Quotation.Document)
	}

	router.GET("/v1/events", jwtMiddleware.Handle(), handlers.SSE.Stream)
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
