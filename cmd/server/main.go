package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/config"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/db"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/metrics"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/monitor"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/qr"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/registration"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/search"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/server"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/session"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/tickets"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/verification"
	"github.com/ak-bharadwaj/concurrence2k26-sub001/internal/workers"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	pg := db.Connect(cfg.Postgres.DSN)
	db.Migrate(pg)
	db.Seed(pg)

	metrics.Register()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   cfg.HTTP.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	es := search.Connect(cfg.Elastic.URL)
	worker := &workers.SyncWorker{DB: pg, ES: es}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go worker.Run(ctx)
	go worker.RetryDLQ(ctx)

	diagStore := &monitor.GormStore{DB: pg}
	go monitor.New(diagStore).Run(ctx)

	sessions := session.NewManager(cfg.Session.Secret, cfg.Session.StudentTTL, cfg.Session.AdminTTL)
	allocator := qr.NewAllocator(&qr.GormStore{DB: pg})

	srv := &server.Server{
		Registrations: registration.NewService(&registration.GormStore{DB: pg}, allocator),
		Verifications: verification.NewService(&verification.GormStore{DB: pg}),
		Tickets:       tickets.NewService(&tickets.GormStore{DB: pg}),
		Allocator:     allocator,
		Sessions:      sessions,
		Auth:          session.NewAuth(&session.GormAuthStore{DB: pg}, sessions),
		Diagnostics:   diagStore,
		CronSecret:    cfg.Cron.Secret,
		StoreTimeout:  cfg.HTTP.StoreTimeout,
	}

	log.Printf("registration API running on %s", cfg.HTTP.Addr)
	if err := http.ListenAndServe(cfg.HTTP.Addr, corsMiddleware.Handler(srv.Router())); err != nil {
		log.Fatalf("listener failed: %v", err)
	}
}
