package main // Entry point package

import (
	"context" // bounds the background purge queries
	"log"     // Logging library
	"time"    // purge interval and timeouts

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/edu-resource-hub/internal/config"     // Internal config loader
	"github.com/iliyamo/edu-resource-hub/internal/database"   // MySQL pool
	"github.com/iliyamo/edu-resource-hub/internal/handler"    // HTTP handlers
	"github.com/iliyamo/edu-resource-hub/internal/middleware" // cache and rate-limit middleware
	"github.com/iliyamo/edu-resource-hub/internal/queue"      // moderation event consumer
	"github.com/iliyamo/edu-resource-hub/internal/repository" // DB repositories
	"github.com/iliyamo/edu-resource-hub/internal/router"     // route registration
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Redis backs the public response cache and the rate limiter. A nil
	// client degrades both middlewares to pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	resources := repository.NewResourceRepo(db)
	topics := repository.NewTopicRepo(db)
	tags := repository.NewTagRepo(db)
	comments := repository.NewCommentRepo(db)
	engagement := repository.NewEngagementRepo(db)
	stats := repository.NewStatsRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	browseH := handler.NewBrowseHandler(cfg, users, resources, topics, tags, comments, engagement)
	resourceH := handler.NewResourceHandler(users, resources, topics)
	engagementH := handler.NewEngagementHandler(users, resources, engagement, comments)
	taxonomyH := handler.NewTaxonomyHandler(cfg, users, topics, tags, resources)
	adminResH := handler.NewAdminResourceHandler(cfg, users, resources, stats)
	adminUserH := handler.NewAdminUserHandler(users)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, browseH, limiter, cache)
	router.RegisterMember(e, resourceH, engagementH, taxonomyH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminResH, adminUserH, taxonomyH, cfg.JWTSecret)

	// Background consumer writing the moderation audit log. Runs its own
	// reconnect loop against the broker.
	go func() {
		if err := queue.StartModerationConsumer(); err != nil {
			log.Printf("moderation consumer stopped: %v", err)
		}
	}()

	// Expired refresh tokens accumulate; purge old rows once a day.
	go func() {
		for {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := tokens.PurgeExpired(ctx, 7*24*time.Hour); err != nil {
				log.Printf("refresh token purge failed: %v", err)
			}
			cancel()
			time.Sleep(24 * time.Hour)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
