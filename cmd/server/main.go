package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"

	"github.com/hatimchharchhoda/Tweet/internal/apperrors"
	"github.com/hatimchharchhoda/Tweet/internal/router"
	"github.com/hatimchharchhoda/Tweet/pkg/config"
	"github.com/hatimchharchhoda/Tweet/pkg/firebase"
	"github.com/hatimchharchhoda/Tweet/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Structured error responses for the whole API
	e.HTTPErrorHandler = apperrors.ErrorHandler

	// Validator
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, db.MongoDB, firebaseApp.AuthClient)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
