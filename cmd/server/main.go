package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keystroke-lab/backend/internal/auth"
	"keystroke-lab/backend/internal/config"
	"keystroke-lab/backend/internal/database"
	"keystroke-lab/backend/internal/handlers"
	"keystroke-lab/backend/internal/services"
	"keystroke-lab/backend/internal/store"
	"keystroke-lab/backend/internal/ws"
)

func main() {
	httpPort := flag.String("http-port", "", "HTTP port (overrides HTTP_PORT)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	if *httpPort != "" {
		cfg.HTTPPort = *httpPort
	}

	log.Println("Starting...")
	log.Printf("HTTP port: %s", cfg.HTTPPort)
	log.Printf("Environment: %s", cfg.Environment)
	log.Printf("Database: %s", cfg.DSNForLog())

	db, err := database.Open(cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	authSvc := auth.NewService(cfg.JWTSecret)
	metrics := services.NewMetrics()
	hub := ws.NewHub(authSvc, metrics)
	h := handlers.New(store.NewPostgres(db), authSvc, hub, metrics, cfg.CORSOrigins)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/signup", h.Register)
	mux.HandleFunc("/api/auth/login", h.Login)
	mux.HandleFunc("/api/auth/user", h.GetCurrentUser)
	mux.HandleFunc("/api/sessions", h.Sessions)
	mux.HandleFunc("/api/sessions/analysis/", h.AnalyzeSession)
	mux.HandleFunc("/api/health", h.Health)
	mux.HandleFunc("/api/metrics", h.MetricsHandler)
	mux.HandleFunc("/ws/sessions", hub.HandleFeed)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("HTTP server listening on port %s", cfg.HTTPPort)
		log.Printf("Session feed: ws://localhost:%s/ws/sessions", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	} else {
		log.Println("HTTP server gracefully stopped")
	}

	log.Println("Closing WebSocket connections...")
	hub.CloseAll()

	log.Println("Goodbye!")
}
