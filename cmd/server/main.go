package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/transitly/scheduler/config"
	"github.com/transitly/scheduler/internal/handler"
	"github.com/transitly/scheduler/internal/middleware"
	"github.com/transitly/scheduler/internal/processor"
	"github.com/transitly/scheduler/internal/repository"
	"github.com/transitly/scheduler/internal/scheduler"
	"github.com/transitly/scheduler/internal/service"
	"github.com/transitly/scheduler/pkg/cache"
	"github.com/transitly/scheduler/pkg/db"
	"github.com/transitly/scheduler/pkg/routing"
)

func main() {
	// ── Load configuration ──────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// ── Connect to MongoDB ──────────────────────────────
	mongoClient, database, err := db.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	if err := db.EnsureIndexes(ctx, database, cfg.Direction.CacheTTL); err != nil {
		log.Fatalf("failed to create indexes: %v", err)
	}
	log.Println("✓ MongoDB connected")

	// ── Connect to Redis (optional fast path) ───────────
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Println("✓ Redis connected")
	}

	// ── Routing provider ────────────────────────────────
	provider, err := routing.NewGoogleProvider(cfg.Direction.GoogleMapsAPIKey)
	if err != nil {
		log.Fatalf("failed to create routing provider: %v", err)
	}

	// ── Initialize layers ───────────────────────────────
	directionRepo := repository.NewDirectionRepository(database, cfg.Direction.CacheTTL)
	programRepo := repository.NewProgramRepository(database)
	taskRepo := repository.NewTaskRepository(database)

	directionSvc := service.NewDirectionService(directionRepo, provider, redisClient, cfg.Direction.CacheTTL)
	schedulerSvc := scheduler.NewService(directionSvc, programRepo, cfg.Scheduler, cfg.Server.DebugMode)

	taskProcessor := processor.New(taskRepo, schedulerSvc, cfg.Processor)
	taskProcessor.Start()

	var checkCache func(ctx context.Context) error
	if redisClient != nil {
		checkCache = func(ctx context.Context) error {
			return cache.HealthCheck(ctx, redisClient)
		}
	}
	healthHandler := handler.NewHealthHandler(func(ctx context.Context) error {
		return db.HealthCheck(ctx, mongoClient)
	}, checkCache)
	directionHandler := handler.NewDirectionHandler(directionSvc)
	scheduleHandler := handler.NewScheduleHandler(schedulerSvc)
	taskHandler := handler.NewTaskHandler(taskRepo)
	programHandler := handler.NewProgramHandler(programRepo)

	// ── Setup router ────────────────────────────────────
	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Shuttle scheduling service. See /api/health."}`))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/direction", directionHandler.GetDirection).Methods(http.MethodGet)
	api.HandleFunc("/schedule", scheduleHandler.Schedule).Methods(http.MethodPost)

	api.HandleFunc("/task", taskHandler.CreateTask).Methods(http.MethodPost)
	api.HandleFunc("/task/{id}", taskHandler.GetTask).Methods(http.MethodGet)

	api.HandleFunc("/program", programHandler.ListPrograms).Methods(http.MethodGet)
	api.HandleFunc("/program", programHandler.CreateProgram).Methods(http.MethodPost)
	api.HandleFunc("/program/{id}", programHandler.GetProgram).Methods(http.MethodGet)
	api.HandleFunc("/program/{id}", programHandler.UpdateProgram).Methods(http.MethodPut)
	api.HandleFunc("/program/{id}", programHandler.DeleteProgram).Methods(http.MethodDelete)
	api.HandleFunc("/program/{id}/vehicles", programHandler.AddVehicle).Methods(http.MethodPost)
	api.HandleFunc("/program/{id}/vehicles/{vehicle_id}", programHandler.UpdateVehicle).Methods(http.MethodPut)
	api.HandleFunc("/program/{id}/vehicles/{vehicle_id}", programHandler.DeleteVehicle).Methods(http.MethodDelete)

	chain := middleware.Recoverer(middleware.RequestLogger(middleware.CORS(router)))

	// ── Start HTTP server ───────────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.ServerAddr(),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in a goroutine so we can listen for shutdown signals.
	go func() {
		log.Printf("🚀 Server listening on %s", cfg.Server.ServerAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// ── Graceful shutdown ───────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("⏳ Shutting down server...")

	// Stop claiming new tasks before the HTTP listener drains.
	taskProcessor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
