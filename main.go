package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"chapamarket/backend/internal/api"
	"chapamarket/backend/internal/cache"
	"chapamarket/backend/internal/config"
	"chapamarket/backend/internal/db"
	"chapamarket/backend/internal/notify"
	"chapamarket/backend/internal/services"
	"chapamarket/backend/internal/storage"
	"chapamarket/backend/internal/tasks"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'img' (image processing), 'all' (default)")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Printf("Error disconnecting from Redis: %v", err)
		}
	}()

	// Admin notifications always log; the Redis channel feeds the live
	// dashboard toast stream when enabled.
	notifier := notify.NewCompositeNotifier(notify.NewLogNotifier())
	if os.Getenv("DISABLE_LIVE_NOTIFICATIONS") != "true" {
		notifier.AddNotifier(notify.NewRedisNotifier(redisClient))
	}

	// Initialize Services needed by handlers and/or task processor.
	// The settings service preloads its cache and subscribes to updates.
	settingsSvc := services.NewSettingsService(mongoDb, cfg, redisClient)

	profileService := services.NewProfileService(mongoDb, cfg)
	listingService := services.NewListingService(mongoDb, cfg)
	orderService := services.NewOrderService(mongoDb, cfg)
	messageService := services.NewMessageService(mongoDb, cfg)
	statsService := services.NewStatsService(profileService, listingService, orderService, messageService, redisClient, cfg)

	s3StorageService, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize S3 storage: %v", err)
	}

	// Initialize Task Client
	taskClient := tasks.NewClient(redisClient)

	// Initialize Task Processor
	taskProcessor := tasks.NewTaskProcessor(cfg, s3StorageService, listingService, profileService, statsService, notifier)

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup

	// Context cancelled on shutdown; stops the periodic task scheduler.
	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()

	// --- Mode-specific servers ---
	var mainApiSrv *http.Server
	var backgroundTaskSrv *asynq.Server
	var imageTaskSrv *asynq.Server

	fmt.Printf("Starting application in '%s' mode...\n", cfg.RunMode)

	apiMode := func() {
		fmt.Println("Starting main API server...")
		mainApiRouter := api.SetupRouter(cfg, mongoDb, redisClient, taskClient, settingsSvc, notifier)
		mainApiSrv = &http.Server{
			Addr:    ":" + cfg.ApiPort,
			Handler: mainApiRouter,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Printf("Main API listening on :%s\n", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Main API ListenAndServe error: %v", err)
			}
			fmt.Println("Main API server stopped.")
		}()
	}

	bgMode := func() {
		fmt.Println("Starting background worker...")
		srv, mux := tasks.SetupServer(redisClient, taskProcessor, false, true)
		backgroundTaskSrv = srv
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Println("Background task server starting...")
			if err := backgroundTaskSrv.Run(mux); err != nil {
				log.Fatalf("Background task server error: %v", err)
			}
			fmt.Println("Background task server stopped.")
		}()

		// Enqueue the periodic sweep and snapshot tasks.
		wg.Add(1)
		go func() {
			defer wg.Done()
			tasks.StartScheduler(bgCtx, taskClient, cfg.SweepInterval)
			fmt.Println("Task scheduler stopped.")
		}()
	}

	imgMode := func() {
		fmt.Println("Starting image processing worker...")
		srv, mux := tasks.SetupServer(redisClient, taskProcessor, true, false)
		imageTaskSrv = srv
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Println("Image processing task server starting...")
			if err := imageTaskSrv.Run(mux); err != nil {
				log.Fatalf("Image processing server error: %v", err)
			}
			fmt.Println("Image processing server stopped.")
		}()
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "img":
		imgMode()
	case "all":
		apiMode()
		bgMode()
		imgMode()
	default:
		log.Fatalf("Invalid run mode specified in config: %s.", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	fmt.Printf("\nReceived signal: %s. Shutting down gracefully...\n", sig)

	cancelBg()

	// Create context with timeout for shutdown
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if mainApiSrv != nil {
		fmt.Println("Shutting down Main API server...")
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("Main API server shutdown error: %v", err)
		}
	}

	if backgroundTaskSrv != nil {
		fmt.Println("Shutting down Background Task server...")
		backgroundTaskSrv.Shutdown()
	}
	if imageTaskSrv != nil {
		fmt.Println("Shutting down Image Processing server...")
		imageTaskSrv.Shutdown()
	}

	// Wait for all server goroutines to finish
	fmt.Println("Waiting for servers to stop...")
	wg.Wait()

	fmt.Println("Server gracefully stopped")
}
