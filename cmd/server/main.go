package main

import (
	"context"
	"log"
	"os"

	"github.com/campushub/backend/internal/realtime"
	"github.com/campushub/backend/internal/router"
	"github.com/campushub/backend/pkg/config"
	"github.com/campushub/backend/pkg/firebase"
	"github.com/campushub/backend/validators"
	"github.com/labstack/echo/v4"
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

	logger := log.New(os.Stdout, "campushub: ", log.LstdFlags)

	// Presence hub: constructed here, torn down on exit. The roster is
	// process-local and lost on restart.
	hub := realtime.NewHub(logger)
	defer hub.Shutdown()

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	notifier := router.SetupRoutes(e, db.Postgres, db.Mongo, firebaseApp.AuthClient, hub, logger)
	defer notifier.Shutdown()

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
