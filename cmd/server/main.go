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
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"vibeguide/internal/auth"
	"vibeguide/internal/config"
	"vibeguide/internal/handler"
	"vibeguide/internal/middleware"
	"vibeguide/internal/repository/postgres"
	"vibeguide/internal/service"
	"vibeguide/internal/service/ai"
	"vibeguide/internal/session"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

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
		"ai_provider", cfg.AIProvider,
	)

	// JWT verification is optional: without JWKS_URL every request runs
	// as the local user, which matches the single-user desktop setup.
	var jwtVerifier auth.TokenVerifier
	if cfg.JWKSURL != "" {
		v, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
		if err != nil {
			log.Fatalf("Failed to create JWT verifier: %v", err)
		}
		defer v.Close()
		jwtVerifier = v
	} else {
		logger.Warn("JWKS_URL not set, running without authentication")
	}

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()
	logger.Info("database connected")

	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	projectRepo := postgres.NewProjectRepository(repoConfig)
	settingsRepo := postgres.NewSettingsRepository(repoConfig)

	// Redis backs the AI response cache. Optional; without it every
	// generation call hits the provider.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		logger.Info("redis connected")
	}

	provider, err := ai.SetupProvider(cfg, rdb, logger)
	if err != nil {
		log.Fatalf("Failed to setup AI provider: %v", err)
	}
	logger.Info("AI provider ready", "provider", provider.Name())

	wizardService := service.NewWizardService(provider, projectRepo, logger)

	registry := session.NewRegistry(cfg.SessionTTL, logger)
	sweeper := cron.New()
	if err := registry.StartSweeper(sweeper, cfg.SweepSchedule); err != nil {
		log.Fatalf("Failed to start session sweeper: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	sessionHandler := handler.NewSessionHandler(registry, logger)
	wizardHandler := handler.NewWizardHandler(registry, logger)
	generationHandler := handler.NewGenerationHandler(registry, wizardService, logger)
	projectHandler := handler.NewProjectHandler(registry, wizardService, logger)
	settingsHandler := handler.NewSettingsHandler(settingsRepo, logger)

	logger.Info("services initialized")

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.Health)

	// Session lifecycle
	mux.HandleFunc("POST /api/sessions", sessionHandler.Create)
	mux.HandleFunc("GET /api/sessions/{id}", sessionHandler.Get)
	mux.HandleFunc("DELETE /api/sessions/{id}", sessionHandler.Delete)
	mux.HandleFunc("DELETE /api/sessions/{id}/notifications", sessionHandler.ClearNotifications)
	mux.HandleFunc("DELETE /api/sessions/{id}/notifications/{notificationId}", sessionHandler.RemoveNotification)

	// Project edits
	mux.HandleFunc("PUT /api/sessions/{id}/description", wizardHandler.UpdateDescription)
	mux.HandleFunc("PUT /api/sessions/{id}/name", wizardHandler.RenameProject)
	mux.HandleFunc("PUT /api/sessions/{id}/requirements", wizardHandler.UpdateRequirements)
	mux.HandleFunc("PUT /api/sessions/{id}/questions", wizardHandler.UpdateQuestions)
	mux.HandleFunc("PUT /api/sessions/{id}/answers", wizardHandler.Answer)

	// Step navigation
	mux.HandleFunc("POST /api/sessions/{id}/steps/next", wizardHandler.NextStep)
	mux.HandleFunc("POST /api/sessions/{id}/steps/prev", wizardHandler.PrevStep)
	mux.HandleFunc("PUT /api/sessions/{id}/step", wizardHandler.GoToStep)

	// AI generation
	mux.HandleFunc("POST /api/sessions/{id}/generate/questions", generationHandler.GenerateQuestions)
	mux.HandleFunc("POST /api/sessions/{id}/generate/analysis", generationHandler.AnalyzeAnswers)
	mux.HandleFunc("POST /api/sessions/{id}/generate/documents", generationHandler.GenerateDocuments)
	mux.HandleFunc("GET /api/sessions/{id}/documents/archive", generationHandler.DownloadArchive)

	// Persistence
	mux.HandleFunc("POST /api/sessions/{id}/save", projectHandler.Save)
	mux.HandleFunc("POST /api/sessions/{id}/project", projectHandler.Load)
	mux.HandleFunc("GET /api/projects", projectHandler.List)
	mux.HandleFunc("GET /api/projects/{id}", projectHandler.Get)

	// User settings
	mux.HandleFunc("GET /api/users/me/settings", settingsHandler.Get)
	mux.HandleFunc("PUT /api/users/me/settings", settingsHandler.Put)

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	var root http.Handler = mux
	root = middleware.Auth(jwtVerifier)(root)
	root = middleware.Recovery(logger)(root)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
