package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/htm-project/cortical-api/internal/api"
	"github.com/htm-project/cortical-api/internal/handlers"
	"github.com/htm-project/cortical-api/internal/infrastructure/config"
	"github.com/htm-project/cortical-api/internal/services"
)

func main() {
	cfg := config.Load()

	app := initializeApplication(cfg)

	if err := app.Run(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// Application represents the main application structure.
type Application struct {
	config     *config.Config
	server     *http.Server
	shutdownCh chan os.Signal
}

// initializeApplication sets up the application with all dependencies.
func initializeApplication(cfg *config.Config) *Application {
	gin.SetMode(gin.DebugMode)

	router := gin.New()

	networkService := services.NewNetworkService(cfg.Engine.MaxNetworks, cfg.Engine.StepDeadline)
	networkHandler := handlers.NewNetworkHandler(networkService)

	appRouter := api.NewRouter(networkHandler)
	appRouter.SetupRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout * 2,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	return &Application{
		config:     cfg,
		server:     server,
		shutdownCh: shutdownCh,
	}
}

// Run starts the HTTP server and handles graceful shutdown.
func (app *Application) Run() error {
	serverErrCh := make(chan error, 1)
	go func() {
		log.Printf("Starting HTM cortical learning engine API on %s", app.config.Server.Address())

		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	select {
	case err := <-serverErrCh:
		return err
	case sig := <-app.shutdownCh:
		log.Printf("Received shutdown signal: %v", sig)
		return app.shutdown()
	}
}

// shutdown performs graceful shutdown of the application.
func (app *Application) shutdown() error {
	log.Println("Initiating graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
		return err
	}

	log.Println("Server shutdown completed")
	return nil
}
