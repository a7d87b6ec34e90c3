package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"design-request-server/config"
	"design-request-server/database"
	"design-request-server/jobs"
	"design-request-server/middleware"
	"design-request-server/routes"
	"design-request-server/services"
	ws "design-request-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	config.Load()

	// Initialize database
	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	SeedUsers()

	// Set Gin mode
	if config.AppConfig.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.InputValidationMiddleware())
	router.Use(middleware.CORSMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Design Request Server is running",
			"time":    time.Now().UTC(),
		})
	})

	// Notification push hub
	hub := ws.NewHub()
	go hub.Run()

	// Wire route handlers to the core services
	routes.InitServices(database.DB, hub)

	// WebSocket endpoint for live notification pushes
	notificationHandler := ws.NewNotificationHandler(hub)
	router.GET("/api/v1/ws/notifications", middleware.WebSocketAuthMiddleware(), notificationHandler.HandleConnection)

	// API routes
	api := router.Group("/api/v1")
	{
		authRoutes := api.Group("/auth")
		authRoutes.Use(middleware.AuthRateLimitMiddleware())
		routes.RegisterAuthRoutes(authRoutes)

		api.GET("/auth/me", middleware.AuthMiddleware(), routes.GetCurrentUser)

		routes.RegisterRoutes(api)
	}

	// Start background jobs
	notificationService := services.NewNotificationService(services.NewGormStore(database.DB), hub)
	deadlineJob := jobs.NewDeadlineJob(notificationService)
	deadlineJob.Start()
	defer deadlineJob.Stop()

	port := config.AppConfig.Server.Port
	log.Printf("Server starting on port %s", port)
	if err := router.Run("0.0.0.0:" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
