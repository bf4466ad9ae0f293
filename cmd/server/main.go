package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/articleai/articleai-server/internal/config"
	"github.com/articleai/articleai-server/internal/database"
	"github.com/articleai/articleai-server/internal/handler"
	"github.com/articleai/articleai-server/internal/jobs"
	"github.com/articleai/articleai-server/internal/llm"
	"github.com/articleai/articleai-server/internal/middleware"
	"github.com/articleai/articleai-server/internal/redis"
	"github.com/articleai/articleai-server/internal/repository"
	"github.com/articleai/articleai-server/internal/service"
	"github.com/articleai/articleai-server/internal/sse"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	adminRepo := repository.NewAdminRepository(db.DB)
	adminSessionRepo := repository.NewAdminSessionRepository(db.DB)
	userRepo := repository.NewUserRepository(db.DB)
	userSessionRepo := repository.NewUserSessionRepository(db.DB)
	publisherRepo := repository.NewPublisherRepository(db.DB)
	articleRepo := repository.NewArticleRepository(db.DB)
	orderRepo := repository.NewOrderRepository(db.DB)

	broker := sse.NewBroker(redisClient)
	defer broker.Close()

	var llmClients []llm.Client
	if cfg.OpenAIAPIKey != "" {
		llmClients = append(llmClients, llm.NewOpenAIClient(cfg.OpenAIAPIKey))
	}
	if cfg.GeminiAPIKey != "" {
		llmClients = append(llmClients, llm.NewGeminiClient(cfg.GeminiAPIKey))
	}
	if cfg.DeepSeekAPIKey != "" {
		llmClients = append(llmClients, llm.NewDeepSeekClient(cfg.DeepSeekAPIKey))
	}
	registry := llm.NewRegistry(llmClients...)

	adminService := service.NewAdminService(
		adminRepo, adminSessionRepo, userRepo, articleRepo, orderRepo, publisherRepo,
		cfg.AdminSessionSecret, cfg.AdminSessionTTL(),
	)
	userService := service.NewUserService(
		userRepo, userSessionRepo, cfg.UserSessionSecret, cfg.UserSessionTTL(),
	)
	publisherService := service.NewPublisherService(publisherRepo)
	articleService := service.NewArticleService(articleRepo)
	orderService := service.NewOrderService(db, orderRepo, articleRepo, publisherRepo, broker)
	generationService := service.NewGenerationService(
		registry, userRepo, articleRepo, service.NewRateLimiter(redisClient.Client), cfg.GenerationPerMin,
	)

	adminSessionMiddleware := middleware.NewAdminSessionMiddleware(adminService)
	userSessionMiddleware := middleware.NewUserSessionMiddleware(userService)
	rateLimitMiddleware := middleware.NewRedisRateLimitMiddleware(redisClient.Client, 60)
	csrfMiddleware := middleware.NewCSRFMiddleware(isProduction)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	adminCookieMaxAge := int(cfg.AdminSessionTTL().Seconds())
	userCookieMaxAge := int(cfg.UserSessionTTL().Seconds())

	adminHandler := handler.NewAdminHandler(
		adminService, orderService, publisherService, articleService,
		adminSessionMiddleware.Handler, adminCookieMaxAge, isProduction,
	)
	userHandler := handler.NewUserHandler(userService, userCookieMaxAge, isProduction)
	publisherHandler := handler.NewPublisherHandler(publisherService)
	articleHandler := handler.NewArticleHandler(articleService)
	orderHandler := handler.NewOrderHandler(orderService)
	generationHandler := handler.NewGenerationHandler(generationService)
	eventsHandler := handler.NewEventsHandler(broker)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(securityHeadersMiddleware.Handler)
		r.Use(csrfMiddleware.Handler)

		r.Mount("/auth", userHandler.Routes())

		r.Group(func(r chi.Router) {
			r.Use(userSessionMiddleware.Handler)
			r.Use(rateLimitMiddleware.Handler)

			r.Get("/me", userHandler.Me)
			r.Get("/events", eventsHandler.ServeHTTP)

			r.Get("/publishers", publisherHandler.List)
			r.Get("/publishers/{id}", publisherHandler.Get)

			r.Get("/articles", articleHandler.List)
			r.Post("/articles", articleHandler.Create)
			r.Get("/articles/{id}", articleHandler.Get)
			r.Patch("/articles/{id}", articleHandler.Update)
			r.Delete("/articles/{id}", articleHandler.Delete)

			r.Post("/articles/generate", generationHandler.Generate)

			r.Get("/orders", orderHandler.List)
			r.Post("/orders", orderHandler.Checkout)
			r.Get("/orders/{id}", orderHandler.Get)
			r.Post("/orders/{id}/pay", orderHandler.Pay)
			r.Post("/orders/{id}/cancel", orderHandler.Cancel)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(securityHeadersMiddleware.Handler)
		r.Use(csrfMiddleware.Handler)
		r.Mount("/", adminHandler.Routes())
	})

	r.NotFound(handler.NewSPAHandler(cfg.StaticDir).ServeHTTP)

	cleanupJob := jobs.NewCleanupJob(
		adminSessionRepo, userSessionRepo, orderRepo,
		config.CleanupJobInterval, config.StaleOrderAge,
	)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
