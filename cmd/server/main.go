package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"helsejournal/internal/auth"
	"helsejournal/internal/config"
	"helsejournal/internal/domain"
	"helsejournal/internal/handler"
	"helsejournal/internal/jobs"
	"helsejournal/internal/metrics"
	"helsejournal/internal/middleware"
	"helsejournal/internal/pdf"
	"helsejournal/internal/repository/postgres"
	"helsejournal/internal/search"
	"helsejournal/internal/service"
	"helsejournal/internal/storage"
)

const version = "1.0.0"

// searchBackend is everything the rest of the wiring needs from the
// index, satisfied by both the live index and the disabled stand-in.
type searchBackend interface {
	Ping(ctx context.Context) error
	EnsureIndex(ctx context.Context) error
	IndexDocument(ctx context.Context, doc *domain.Document) error
	RemoveDocument(ctx context.Context, id string) error
	Query(ctx context.Context, query string, filters domain.SearchFilters, limit int) ([]domain.IndexHit, error)
	Close()
}

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	tokenIssuer, err := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLMinutes)*time.Minute)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// The search index is optional at startup: without it the service
	// runs with relational fallback search until the next restart.
	var index searchBackend
	liveIndex, err := search.New(search.Config{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err != nil {
		logger.Warn("search index unreachable, running degraded", "error", err)
		index = search.Unavailable()
	} else {
		index = liveIndex
		if err := index.EnsureIndex(ctx); err != nil {
			logger.Warn("ensure search index", "error", err)
		}
	}
	defer index.Close()

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	docRepo := postgres.NewDocumentRepository(repoConfig)
	noteRepo := postgres.NewNoteRepository(repoConfig)
	shareRepo := postgres.NewShareLinkRepository(repoConfig)
	notificationRepo := postgres.NewNotificationRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	fileStore, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to create file store: %v", err)
	}
	extractor := pdf.NewExtractor()

	// Create services
	authService := service.NewAuthService(userRepo, tokenIssuer, logger)
	docService := service.NewDocumentService(docRepo, fileStore, extractor, index, notificationRepo, cfg.MaxFileSize, logger)
	treeService := service.NewTreeService(docRepo)
	searchService := service.NewSearchService(index, docRepo, logger)
	noteService := service.NewNoteService(noteRepo, docRepo)
	shareService := service.NewShareService(shareRepo, docRepo, fileStore, txManager)
	notificationService := service.NewNotificationService(notificationRepo)

	if err := authService.Bootstrap(ctx, cfg.DefaultUsername, cfg.DefaultPassword); err != nil {
		log.Fatalf("Failed to bootstrap default account: %v", err)
	}

	// Create handlers
	authHandler := handler.NewAuthHandler(authService, cfg.TokenTTLMinutes*60, logger)
	docHandler := handler.NewDocumentHandler(docService, searchService, cfg.MaxFileSize, logger)
	treeHandler := handler.NewTreeHandler(treeService, logger)
	noteHandler := handler.NewNoteHandler(noteService, logger)
	shareHandler := handler.NewShareHandler(shareService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)
	metaHandler := handler.NewMetaHandler(pool, index, version, logger)

	logger.Info("services initialized")

	// Scheduled backups
	if cfg.BackupEnabled {
		runner := jobs.NewRunner(logger,
			jobs.NewBackupJob(cfg.BackupSchedule, cfg.UploadDir, cfg.BackupDir, logger),
		)
		if err := runner.Start(); err != nil {
			log.Fatalf("Failed to start scheduled jobs: %v", err)
		}
		defer runner.Stop()
	}

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", metaHandler.Health)
	mux.HandleFunc("GET /api/info", metaHandler.Info)
	mux.HandleFunc("GET /api/categories", metaHandler.Categories)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Auth routes
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)
	mux.HandleFunc("PUT /api/auth/me", authHandler.UpdateProfile)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)
	mux.HandleFunc("POST /api/auth/logout", authHandler.Logout)

	// Document routes
	mux.HandleFunc("GET /api/documents", docHandler.List)
	mux.HandleFunc("POST /api/documents/upload", docHandler.Upload)
	mux.HandleFunc("GET /api/documents/tree", treeHandler.Get)
	mux.HandleFunc("GET /api/documents/search", docHandler.Search)
	mux.HandleFunc("GET /api/documents/{id}", docHandler.Get)
	mux.HandleFunc("PUT /api/documents/{id}", docHandler.Update)
	mux.HandleFunc("DELETE /api/documents/{id}", docHandler.Delete)
	mux.HandleFunc("GET /api/documents/{id}/view", docHandler.View)
	mux.HandleFunc("POST /api/documents/{id}/favorite", docHandler.ToggleFavorite)

	// Note routes
	mux.HandleFunc("POST /api/documents/{id}/notes", noteHandler.Create)
	mux.HandleFunc("GET /api/documents/{id}/notes", noteHandler.List)
	mux.HandleFunc("DELETE /api/documents/{id}/notes/{noteID}", noteHandler.Delete)

	// Share routes; the token redemption lives outside /api/documents
	// so the public path never collides with document IDs
	mux.HandleFunc("POST /api/documents/{id}/share", shareHandler.Create)
	mux.HandleFunc("DELETE /api/documents/{id}/share/{shareID}", shareHandler.Revoke)
	mux.HandleFunc("GET /api/share/{token}", shareHandler.Access)

	// Notification routes
	mux.HandleFunc("GET /api/notifications", notificationHandler.List)
	mux.HandleFunc("POST /api/notifications/{id}/read", notificationHandler.MarkRead)
	mux.HandleFunc("POST /api/notifications/read-all", notificationHandler.MarkAllRead)

	// Build middleware chain; metrics wraps auth so rejected requests
	// are counted too.
	// Order: CORS -> Recovery -> Metrics -> Auth -> Routes
	var httpHandler http.Handler = middleware.Auth(tokenIssuer)(mux)
	httpHandler = metrics.Middleware(mux, httpHandler)
	httpHandler = middleware.Recovery(logger)(httpHandler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	httpHandler = corsHandler.Handler(httpHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
