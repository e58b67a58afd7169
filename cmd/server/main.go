package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	config "github.com/maheshrc27/blog-cms/configs"
	"github.com/maheshrc27/blog-cms/internal/api"
	"github.com/maheshrc27/blog-cms/internal/api/handlers"
	"github.com/maheshrc27/blog-cms/internal/api/middleware"
	"github.com/maheshrc27/blog-cms/internal/database"
	"github.com/maheshrc27/blog-cms/internal/feed"
	job "github.com/maheshrc27/blog-cms/internal/jobs"
	"github.com/maheshrc27/blog-cms/internal/ogimage"
	"github.com/maheshrc27/blog-cms/internal/queue"
	"github.com/maheshrc27/blog-cms/internal/ratelimit"
	"github.com/maheshrc27/blog-cms/internal/repository"
	"github.com/maheshrc27/blog-cms/internal/service"
	"github.com/maheshrc27/blog-cms/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	if cfg.SecretKey == "" {
		log.Fatal("SECRET_KEY is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Open(ctx, cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer rdb.Close()

	var limiter ratelimit.Limiter
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, using in-memory rate limiter", "error", err)
		limiter = ratelimit.NewMemoryLimiter(cfg.ReactionLimit, time.Minute)
	} else {
		limiter = ratelimit.NewRedisLimiter(rdb, "helpful", cfg.ReactionLimit, time.Minute)
	}

	s3Client, err := storage.NewS3Client(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to configure storage: %v", err)
	}
	objectStore := storage.NewObjectStore(s3Client, cfg.Storage)

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(api.AppConfig(*cfg))

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	postCategoryRepo := repository.NewPostCategoryRepository(db)
	adRepo := repository.NewAdRepository(db)
	adSettingsRepo := repository.NewAdSettingsRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	analyticsCacheRepo := repository.NewAnalyticsCacheRepository(db)
	adsenseTokenRepo := repository.NewAdsenseTokenRepository(db)

	scheduler := queue.NewScheduler(client)

	authService := service.NewAuthService(*cfg, service.NewLoginOAuthConfig(*cfg), userRepo)
	userService := service.NewUserService(userRepo)
	adService := service.NewAdService(adRepo, adSettingsRepo)
	postService := service.NewPostService(*cfg, repository.NewTransactor(db), postRepo, categoryRepo, postCategoryRepo, adService, scheduler)
	categoryService := service.NewCategoryService(categoryRepo)
	reactionService := service.NewReactionService(postRepo, limiter)
	mediaService := service.NewMediaService(*cfg, mediaAssetRepo, objectStore)
	adsenseService := service.NewAdsenseService(*cfg, service.NewAdsenseOAuthConfig(*cfg), adsenseTokenRepo)
	analyticsService := service.NewAnalyticsService(analyticsCacheRepo, postRepo, service.NewGoogleReportFetcher(cfg.Google), cfg.CacheTTL)

	ogRenderer, err := ogimage.New(append(cfg.OGFontPaths, ogimage.SystemFontPaths...)...)
	if err != nil {
		log.Fatalf("Failed to load OG image fonts: %v", err)
	}

	site := feed.Site{URL: cfg.SiteURL, Name: cfg.SiteName, Description: cfg.SiteTagline, Author: cfg.SiteAuthor}
	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	api.Register(app, api.Handlers{
		Auth:      handlers.NewAuthHandler(*cfg, authService),
		User:      handlers.NewUserHandler(userService),
		Post:      handlers.NewPostHandler(postService, reactionService),
		Category:  handlers.NewCategoryHandler(categoryService),
		Ad:        handlers.NewAdHandler(adService),
		Media:     handlers.NewMediaHandler(mediaService),
		Adsense:   handlers.NewAdsenseHandler(*cfg, adsenseService),
		Analytics: handlers.NewAnalyticsHandler(analyticsService),
		Site:      handlers.NewSiteHandler(site, postService, categoryService, ogRenderer, db),
	}, authMiddleware.AuthMiddleware())

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(adsenseService)
	viewSyncJob := job.NewViewSyncJob(analyticsService)

	c := cron.New()
	c.AddFunc("@every 00h10m00s", refreshTokenJob.RefreshTokens)
	c.AddFunc("@hourly", viewSyncJob.SyncViews)
	c.Start()

	// queue
	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 10,
	})
	mux := asynq.NewServeMux()
	queue.NewWorker(postService).Register(mux)

	go func() {
		slog.Info("starting the asynq server")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	slog.Info("server is running", "port", cfg.Port)

	gracefulShutdown(app, server, c, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, server *asynq.Server, c *cron.Cron, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("shutting down server")

	c.Stop()
	server.Shutdown()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	slog.Info("server shutdown complete")
}
