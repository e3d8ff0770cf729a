package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/avelks/todo-api-be/internal/api"
	"github.com/avelks/todo-api-be/internal/auth"
	"github.com/avelks/todo-api-be/internal/config"
	"github.com/avelks/todo-api-be/internal/database"
	"github.com/avelks/todo-api-be/internal/logger"
	"github.com/avelks/todo-api-be/internal/monitoring"
	"github.com/avelks/todo-api-be/internal/services"
	"github.com/avelks/todo-api-be/internal/websocket"
)

const tokenTTL = 60 * time.Minute

func main() {
	// Load configuration; a missing secret or database path is fatal.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the token service with the process-wide signing secret
	tokens := auth.NewTokenService(cfg.JWTSecret, tokenTTL)

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	userService := services.NewUserService(db)
	todoService := services.NewTodoService(db)
	eventService := services.NewEventService(db, hub)

	// Set up and run the background stats reporter
	statReporter, err := monitoring.NewStatReporter(userService, todoService, cfg.StatsSchedule)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.StatsSchedule).Msg("Invalid stats schedule")
	}
	go statReporter.Run()

	// Set up router
	router := api.NewRouter(tokens, hub, userService, todoService, eventService, cfg.AllowedOrigin, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	statReporter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
