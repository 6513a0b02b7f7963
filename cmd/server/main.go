package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marktplaatser/backend/pkg/cache"
	"github.com/marktplaatser/backend/pkg/config"
	"github.com/marktplaatser/backend/pkg/database"
	"github.com/marktplaatser/backend/pkg/limiter"
	"github.com/marktplaatser/backend/pkg/marktplaats"
	"github.com/marktplaatser/backend/pkg/server"
	"github.com/marktplaatser/backend/pkg/service"
	"github.com/marktplaatser/backend/pkg/vision"
	"github.com/redis/go-redis/v9"
)

const (
	gracefulTimeout = time.Second * 15
)

func main() {
	cfg := config.New()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	db, closeDB, err := database.New(cfg.PostgresAddr, cfg.PostgresDB, cfg.PostgresUser, cfg.PostgresPassword)
	if err != nil {
		log.Fatalf("### Can't init database: %v", err)
	}
	defer closeDB()

	rdb, closeRedis, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisUser, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("### Can't init redis: %v", err)
	}
	defer closeRedis()

	visionClient, err := vision.NewClient(context.Background(), cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("### Can't init vision client: %v", err)
	}
	defer visionClient.Close()

	generateSvc, draftSvc, categorySvc, listingSvc, images := composeServices(db, rdb, visionClient, cfg)

	srv, err := server.New(cfg.ListenAddr, generateSvc, draftSvc, categorySvc, listingSvc, images)
	if err != nil {
		log.Fatalf("### Can't create server: %v", err)
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("### Can't listen and serve: %v", err)
		}
	}()
	slog.Info(fmt.Sprintf("HTTP server listening at %s", srv.Addr))

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	ctx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
	defer cancel()

	srv.Shutdown(ctx)
}

func composeServices(db *sql.DB, rdb *redis.Client, visionClient *vision.Client, cfg *config.Config) (
	generate service.Generate,
	draft service.Draft,
	category service.Category,
	listing service.Listing,
	images database.ImageRepository,
) {
	drafts := &database.DraftDatabase{DB: db}
	tokens := &database.TokenDatabase{DB: db}
	images = &database.ImageDatabase{DB: db}

	mp := marktplaats.New(
		cfg.MarktplaatsAPIBase,
		cfg.MarktplaatsAuthBase,
		cfg.MarktplaatsClientID,
		cfg.MarktplaatsClientSecret,
		tokens,
	)

	store := &service.ImageStore{Images: images, PublicBaseURL: cfg.PublicBaseURL}

	category = &service.CategoryGeneric{MP: mp}
	if cfg.CacheCategories {
		category = &service.CategoryCaching{Category: category, Redis: rdb, TTL: cfg.CategoryCacheTTL}
	}

	generate = &service.GenerateGeneric{
		Vision:     visionClient,
		Categories: category,
		Schema:     mp,
		Drafts:     drafts,
		Store:      store,
	}
	generate = &service.GenerateLimiting{Generate: generate, Limiter: &limiter.Limiter{Redis: rdb, Limit: cfg.GenerationsLimit}, FailOpen: cfg.LimiterFailOpen}
	generate = &service.GenerateLogging{Generate: generate}

	draft = &service.DraftGeneric{Drafts: drafts, MP: mp, Store: store}
	draft = &service.DraftLogging{Draft: draft}

	listing = &service.ListingGeneric{MP: mp}
	listing = &service.ListingLogging{Listing: listing}

	return
}

func parseLogLevel(lvl string) slog.Level {
	switch lvl {
	case slog.LevelDebug.String():
		return slog.LevelDebug
	case slog.LevelInfo.String():
		return slog.LevelInfo
	case slog.LevelWarn.String():
		return slog.LevelWarn
	case slog.LevelError.String():
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
