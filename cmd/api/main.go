package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/config"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/logging"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/postgres"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/redis"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/service"
	httpx "github.com/njprem/Opportunity_Catalog_BackEnd/internal/transport/http"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/util"
)

func main() {
	cfg := config.Load()

	var sinks []zapcore.WriteSyncer
	if writer := logging.OptionalLogstash(cfg.LogstashTCPAddr, os.Stderr); writer != nil {
		defer writer.Close()
		sinks = append(sinks, writer)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, sinks...)
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			logger.Fatal("migrate schema", zap.Error(err))
		}
	}

	listingRepo := postgres.NewListingRepo(db)
	eventRepo := postgres.NewModerationEventRepo(db)
	roleRepo := postgres.NewRoleRepo(db, cfg.ModeratorRoles...)

	var (
		bookmarkRepo ports.BookmarkRepository = postgres.NewBookmarkRepo(db)
		profileRepo  ports.ProfileRepository  = postgres.NewProfileRepo(db)
	)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(redis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer client.Close()
		if err := redis.Ping(ctx, client); err != nil {
			logger.Warn("redis unavailable, continuing without cache", zap.Error(err))
		} else {
			profileRepo = redis.NewProfileCache(client, profileRepo, cfg.ProfileCacheTTL, logger.Named("profile_cache"))
			if cfg.BookmarkBackend == "redis" {
				bookmarkRepo = redis.NewBookmarkRepo(client)
			}
		}
	} else if cfg.BookmarkBackend == "redis" {
		logger.Warn("BOOKMARK_BACKEND=redis without REDIS_ADDR, using postgres")
	}

	orchestrator := service.NewQueryOrchestrator(listingRepo, service.NewFacetCompiler(cfg.CatalogDefaultLimit), service.QueryOrchestratorConfig{
		Debounce: cfg.QueryDebounce,
		Logger:   logger.Named("orchestrator"),
	})
	defer orchestrator.Close()

	catalog := service.NewCatalogService(orchestrator, listingRepo, profileRepo, logger.Named("catalog"))
	bookmarks := service.NewBookmarkService(bookmarkRepo, listingRepo, logger.Named("bookmarks"))
	moderation := service.NewModerationService(listingRepo, eventRepo, roleRepo, service.ModerationConfig{
		AllowedCategories:  cfg.AllowedCategories,
		ForbidSelfApproval: cfg.ForbidSelfApproval,
		Logger:             logger.Named("moderation"),
	})

	tokens := util.NewJWTManager(cfg.JWTSecret, 24*time.Hour)
	auth := httpx.NewAuthenticator(tokens, roleRepo)

	e := httpx.NewRouter(cfg.AllowOrigins, logger)
	httpx.RegisterSwagger(e, filepath.Join("docs", "swagger.yaml"))
	httpx.RegisterListings(e, auth, catalog, bookmarks)
	httpx.RegisterBookmarks(e, auth, bookmarks)
	httpx.RegisterModeration(e, auth, moderation)
	if cfg.EnableSubmissions {
		wizardLogger := logger.Named("wizard")
		httpx.RegisterSubmissions(e, auth, func(flow service.SubmissionFlow) (*service.SubmissionWizard, error) {
			return service.NewSubmissionWizard(flow, moderation, service.WizardOptions{Logger: wizardLogger})
		})
	}

	go func() {
		logger.Info("listening", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
