package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"chapamarket/backend/internal/api/handlers"
	"chapamarket/backend/internal/api/middleware"
	"chapamarket/backend/internal/config"
	"chapamarket/backend/internal/notify"
	"chapamarket/backend/internal/services"
	"chapamarket/backend/internal/storage"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, taskClient handlers.IAsynqClient, settingsSvc services.ISettingsService, notifier notify.Notifier) *gin.Engine {
	// Initialize services needed by API handlers
	profileService := services.NewProfileService(db, cfg)
	listingService := services.NewListingService(db, cfg)
	orderService := services.NewOrderService(db, cfg)
	messageService := services.NewMessageService(db, cfg)
	storyService := services.NewStoryService(db, cfg)
	bannerService := services.NewBannerService(db, cfg)
	statsService := services.NewStatsService(profileService, listingService, orderService, messageService, rdb, cfg)

	s3StorageService, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("CRITICAL: Failed to initialize S3 storage for API: %v", err)
	}

	r := gin.Default()

	// Initialize Middleware
	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	// Apply global middleware first (order matters)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(cfg, profileService)
	listingHandler := handlers.NewListingHandler(cfg, listingService, s3StorageService, taskClient)
	orderHandler := handlers.NewOrderHandler(orderService, listingService)
	messageHandler := handlers.NewMessageHandler(messageService)
	contentHandler := handlers.NewContentHandler(storyService, bannerService, settingsSvc)
	adminHandler := handlers.NewAdminHandler(
		statsService, profileService, listingService, orderService, messageService,
		storyService, bannerService, settingsSvc, notifier, cfg.RecentFetchLimit)

	v1 := r.Group("/v1")
	{
		// Public routes
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)

		v1.GET("/listing/search", listingHandler.Search)
		v1.GET("/listing/:id", listingHandler.GetByID)
		v1.GET("/user/:id/listing", listingHandler.GetBySeller)

		v1.GET("/story", contentHandler.ListStories)
		v1.GET("/story/:id", contentHandler.GetStory)
		v1.GET("/banner/active", contentHandler.ActiveBanner)
		v1.GET("/payment-config", contentHandler.PaymentConfig)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Authenticated routes
		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret))
		{
			authRequired.POST("/listing", listingHandler.Create)
			authRequired.POST("/listing/:id/image-url", listingHandler.RequestUploadURL)
			authRequired.POST("/listing/:id/image", listingHandler.ConfirmUpload)

			authRequired.POST("/order", orderHandler.Create)
			authRequired.GET("/order", orderHandler.MyOrders)

			authRequired.POST("/message", messageHandler.Send)
			authRequired.GET("/message/conversations", messageHandler.Conversations)
			authRequired.GET("/message/thread", messageHandler.Thread)
		}

		// Admin routes
		adminRequired := v1.Group("/admin")
		adminRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret), middleware.AdminMiddleware())
		{
			adminRequired.GET("/dashboard", adminHandler.Dashboard)
			adminRequired.GET("/dashboard/live", adminHandler.DashboardLive)

			adminRequired.GET("/users", adminHandler.ListUsers)
			adminRequired.GET("/users/:id", adminHandler.GetUser)
			adminRequired.POST("/users/:id/suspend", adminHandler.SuspendUser)
			adminRequired.POST("/users/:id/activate", adminHandler.ActivateUser)
			adminRequired.POST("/users/:id/premium", adminHandler.GrantPremium)
			adminRequired.DELETE("/users/:id/premium", adminHandler.RevokePremium)
			adminRequired.PUT("/users/:id/role", adminHandler.SetUserRole)
			adminRequired.DELETE("/users/:id", adminHandler.DeleteUser)

			adminRequired.GET("/listings", adminHandler.ListListings)
			adminRequired.POST("/listings/:id/approve", adminHandler.ApproveListing)
			adminRequired.POST("/listings/:id/reject", adminHandler.RejectListing)
			adminRequired.POST("/listings/:id/feature", adminHandler.ToggleListingFeatured)
			adminRequired.DELETE("/listings/:id", adminHandler.DeleteListing)

			adminRequired.GET("/orders", adminHandler.ListOrders)
			adminRequired.GET("/messages", adminHandler.ListMessages)

			adminRequired.GET("/stories", adminHandler.ListStories)
			adminRequired.POST("/stories", adminHandler.CreateStory)
			adminRequired.PUT("/stories/:id", adminHandler.UpdateStory)
			adminRequired.POST("/stories/:id/publish", adminHandler.PublishStory)
			adminRequired.POST("/stories/:id/feature", adminHandler.ToggleStoryFeatured)
			adminRequired.DELETE("/stories/:id", adminHandler.DeleteStory)

			adminRequired.GET("/banners", adminHandler.ListBanners)
			adminRequired.POST("/banners", adminHandler.CreateBanner)
			adminRequired.PUT("/banners/:id", adminHandler.UpdateBanner)
			adminRequired.POST("/banners/:id/activate", adminHandler.ActivateBanner)
			adminRequired.POST("/banners/:id/deactivate", adminHandler.DeactivateBanner)
			adminRequired.DELETE("/banners/:id", adminHandler.DeleteBanner)

			adminRequired.GET("/settings", adminHandler.GetSettings)
			adminRequired.PUT("/settings/:key", adminHandler.SetSetting)
		}
	}

	return r
}
