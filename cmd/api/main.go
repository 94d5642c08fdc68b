package main

import (
	"fmt"
	"net/http"
	"os"

	"dolfin/internal/config"
	"dolfin/internal/database"
	"dolfin/internal/handlers"
	"dolfin/internal/logger"
	"dolfin/internal/middleware"
	"dolfin/internal/provider"
	"dolfin/internal/services"
	"dolfin/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "dolfin/internal/docs" // Import swagger docs
)

// @title           DolFin API
// @version         1.0
// @description     DolFin maintains a durable local cache of banking transactions sourced from a remote provider and mediates provider-account linking.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validator.Register()

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Provider client; the token source caches and refreshes server-access
	// tokens on expiry.
	providerClient := provider.NewBasiqClient(provider.BasiqConfig{
		BaseURL: appConfig.ProviderBaseURL,
		APIKey:  appConfig.ProviderAPIKey,
		Timeout: appConfig.ProviderTimeout,
	})

	// Initialize services
	db := dbManager.DB()
	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db)
	linkService := services.NewLinkService(userService, providerClient)
	syncService := services.NewSyncService(userService, transactionService, providerClient)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	linkHandler := handlers.NewLinkHandler(linkService)
	transactionHandler := handlers.NewTransactionHandler(syncService, transactionService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)

	link := protected.Group("/link")
	link.POST("", linkHandler.Register)
	link.GET("/url", linkHandler.GetLinkURL)

	protected.POST("/sync", transactionHandler.Sync)
	protected.GET("/transactions", transactionHandler.GetCachedTransactions)
	protected.DELETE("/transactions", transactionHandler.ClearTransactions)

	log.Infof("Starting DolFin backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
