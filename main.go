package main

import (
	"context"
	"log"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/fixup-labs/fixup-api/config"
	"github.com/fixup-labs/fixup-api/controllers"
	"github.com/fixup-labs/fixup-api/middleware"
	"github.com/fixup-labs/fixup-api/models"
	"github.com/fixup-labs/fixup-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting FixUp API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	// Document store client, shared by all collection adapters
	ddb, err := config.ConnectDynamoDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to DynamoDB: %v", err)
	}
	services.InitProfileStore(ddb)
	services.InitJobStore(ddb)
	services.InitConversationStore(ddb)
	services.InitProductStore(ddb)

	// Product search index
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to search database: %v", err)
	}
	db := config.GetDB()
	if err := db.AutoMigrate(&models.ProductIndexEntry{}); err != nil {
		log.Fatalf("Failed to migrate search database: %v", err)
	}
	log.Println("Search database migration completed successfully")
	services.InitProductSearch(db)

	// Blob storage
	if _, err := services.InitS3Service(ctx); err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}

	// Model-backed services
	if _, err := services.InitAssistantService(); err != nil {
		log.Fatalf("Failed to initialize assistant service: %v", err)
	}
	if _, err := services.InitVisionService(); err != nil {
		log.Fatalf("Failed to initialize vision service: %v", err)
	}
	if _, err := services.InitServiceClassifier(cfg.ServiceKeywordFile); err != nil {
		log.Fatalf("Failed to initialize service classifier: %v", err)
	}

	// Initialize Gin router
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	authRequired := middleware.EnsureValidToken(cfg)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Store status endpoint
		v1.GET("/store/status", storeStatus)

		// Unauthenticated advisory endpoints
		v1.POST("/chat-handler", controllers.ChatHandler)
		v1.POST("/product-matcher", controllers.MatchProducts)
		v1.POST("/image-analyzer", controllers.AnalyzeImage)

		// Authenticated endpoints
		v1.POST("/register-user", authRequired, controllers.RegisterUser)
		v1.POST("/register-professional", authRequired, controllers.RegisterProfessional)
		v1.GET("/get-profile", authRequired, controllers.GetProfile)
		v1.GET("/get-conversation", authRequired, controllers.GetConversation)
		v1.GET("/list-conversations", authRequired, controllers.ListConversations)
		v1.GET("/jobs", authRequired, controllers.ListJobs)
		v1.POST("/jobs", authRequired, controllers.CreateJob)
		v1.GET("/job-quotes", authRequired, controllers.ListQuotes)
		v1.POST("/job-quotes", authRequired, controllers.SubmitQuote)
		v1.PATCH("/job-quotes", authRequired, controllers.UpdateQuote)
	}

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "FixUp API is running",
	})
}

// storeStatus checks DynamoDB and search database connectivity
func storeStatus(c *gin.Context) {
	cfg := config.GetConfig()

	// Cheap reachability probe against the users table
	_, err := config.GetDynamoDB().DescribeTable(c.Request.Context(), &dynamodb.DescribeTableInput{
		TableName: aws.String(cfg.UsersTable),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Document store connection failed",
			},
		})
		return
	}

	sqlDB, err := config.GetDB().DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get search database instance",
			},
		})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Search database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Stores connected",
	})
}
