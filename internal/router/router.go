package router

import (
	"context"
	"log"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/hatimchharchhoda/Tweet/internal/handlers"
	"github.com/hatimchharchhoda/Tweet/internal/middleware"
	"github.com/hatimchharchhoda/Tweet/internal/models"
	"github.com/hatimchharchhoda/Tweet/internal/repositories"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	log.Println("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, pgdb *gorm.DB, mongoDB *mongo.Database, firebaseAuthClient *auth.Client) {
	// AutoMigrate PostgreSQL models
	if err := pgdb.AutoMigrate(&models.User{}); err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	likeRepo := repositories.NewMongoLikeRepository(mongoDB)
	commentRepo := repositories.NewMongoCommentRepository(mongoDB)

	// Unique (user_id, post_id) index serializes concurrent first-likes
	if err := likeRepo.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("Failed to create like indexes: %v", err)
	}

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware())
	log.Println("JWT authentication middleware applied to /api/v1 group.")

	// Feed routes (global paginated feed)
	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, likeRepo)
	feedHandler.RegisterFeedRoutes(api)
	log.Println("Feed routes configured.")

	// Post routes
	postHandler := handlers.NewPostHandler(postRepo, userRepo)
	postHandler.RegisterPostRoutes(api)
	log.Println("Post routes configured.")

	// Reaction routes
	likeHandler := handlers.NewLikeHandler(likeRepo, postRepo, userRepo)
	likeHandler.RegisterLikeRoutes(api)
	log.Println("Reaction routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, userRepo)
	commentHandler.RegisterCommentRoutes(api)
	log.Println("Comment routes configured.")

	// Trending routes
	trendingHandler := handlers.NewTrendingHandler(postRepo, userRepo)
	trendingHandler.RegisterTrendingRoutes(api)
	log.Println("Trending routes configured.")

	log.Println("All routes configured.")
}
