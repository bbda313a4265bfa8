package main

import (
	"log"
	"net/http"
	"strings"
	"time"

	"pricewatch/capture"
	"pricewatch/config"
	"pricewatch/database"
	"pricewatch/engine"
	"pricewatch/handlers"
	"pricewatch/middleware"
	"pricewatch/notify"
	"pricewatch/repository"
	"pricewatch/scheduler"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.CreateTables(db); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	monitorRepo := repository.NewMonitorRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	changeRepo := repository.NewChangeRepository(db)

	capturer, err := capture.New(cfg.ScreenshotDir)
	if err != nil {
		log.Fatalf("Failed to launch capturer: %v", err)
	}
	defer capturer.Close()

	eng := engine.New(engine.DefaultOptions())
	notifier := notify.New(cfg.Alerts)

	checker := scheduler.NewChecker(
		monitorRepo, snapshotRepo, changeRepo,
		capturer, eng, notifier,
		cfg.CheckSchedule, cfg.CheckOnStart,
	)
	checker.Start()
	defer checker.Stop()

	h := handlers.NewHandlers(monitorRepo, snapshotRepo, changeRepo, checker)

	r := mux.NewRouter()
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitRPS))

	r.HandleFunc("/health", healthCheck).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/monitors", h.AddMonitor).Methods("POST")
	api.HandleFunc("/monitors", h.GetMonitors).Methods("GET")
	api.HandleFunc("/monitors/{id}", h.GetMonitor).Methods("GET")
	api.HandleFunc("/monitors/{id}", h.DeleteMonitor).Methods("DELETE")
	api.HandleFunc("/monitors/{id}/check", h.CheckNow).Methods("POST")
	api.HandleFunc("/monitors/{id}/changes", h.GetChanges).Methods("GET")
	api.HandleFunc("/monitors/{id}/snapshots", h.GetSnapshots).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	addr := cfg.Host + ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      c.Handler(r),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: 2 * time.Minute, // synchronous checks render a page
	}

	log.Printf("Server starting on %s", addr)
	log.Fatal(srv.ListenAndServe())
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"service":"pricewatch","status":"healthy"}`))
}
