/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the production engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Create API handler with planner and allocator
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 8080)
  -db        SQLite database path (default: production.db)
             Use ":memory:" for in-memory database
  -capacity  Global kiln capacity in pieces per day (default: 340)
  -waste     Expected waste fraction applied to pending demand (default: 0.25)
  -buffer    Post-processing buffer in business days (default: 3)
  -shipping  Shipping time in business days (default: 3)
  -publish-interval
             How often delivery estimates refresh in the background
             (default: 1h, 0 disables)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/factory.db"

  # Run with a larger kiln
  ./server -capacity=500

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kilnworks/production-engine/api"
	"github.com/kilnworks/production-engine/production"
	"github.com/kilnworks/production-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "production.db", "SQLite database path")
	capacity := flag.Int("capacity", 0, "global daily capacity in pieces (0 = default)")
	waste := flag.Float64("waste", -1, "waste fraction applied to pending demand (-1 = default)")
	buffer := flag.Int("buffer", -1, "post-processing buffer in business days (-1 = default)")
	shipping := flag.Int("shipping", -1, "shipping time in business days (-1 = default)")
	publishEvery := flag.Duration("publish-interval", time.Hour, "how often to refresh delivery estimates (0 disables)")
	flag.Parse()

	cfg := production.DefaultConfig()
	if *capacity > 0 {
		cfg.GlobalDailyCapacity = *capacity
	}
	if *waste >= 0 {
		cfg.WasteFraction = *waste
	}
	if *buffer >= 0 {
		cfg.PostProcessingDays = *buffer
	}
	if *shipping >= 0 {
		cfg.ShippingDays = *shipping
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler and router
	handler := api.NewHandler(store, cfg)
	router := api.NewRouter(handler)

	// Background estimate publisher
	scheduler := api.NewEstimateScheduler(handler.Planner)
	if *publishEvery > 0 {
		scheduler.CheckInterval = *publishEvery
	} else {
		scheduler.Enabled = false
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		log.Printf("[Config] capacity=%d/day waste=%.2f buffer=%dd shipping=%dd",
			cfg.GlobalDailyCapacity, cfg.WasteFraction, cfg.PostProcessingDays, cfg.ShippingDays)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
