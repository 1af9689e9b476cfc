package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/JustinTDCT/VidVault/internal/api"
	"github.com/JustinTDCT/VidVault/internal/config"
	"github.com/JustinTDCT/VidVault/internal/db"
	"github.com/JustinTDCT/VidVault/internal/jobs"
	"github.com/JustinTDCT/VidVault/internal/repository"
	"github.com/JustinTDCT/VidVault/internal/scheduler"
	"github.com/JustinTDCT/VidVault/internal/scraper"
	"github.com/JustinTDCT/VidVault/internal/upstream"
	"github.com/JustinTDCT/VidVault/internal/version"
)

func main() {
	ver := version.Load()
	log.Printf("VidVault ingestion engine %s starting...", ver.Version)

	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	cfg.MergeFromDB(database.DB)
	log.Printf("upstream=%s page_delay=%dms request_timeout=%dms",
		cfg.UpstreamBaseURL, cfg.PageDelayMs, cfg.RequestTimeoutMs)

	wsHub := api.NewWSHub()

	catalog := repository.NewCatalog(database.DB)
	fetcher := upstream.NewClient(cfg.UpstreamBaseURL, cfg.PageLimit)
	runRepo := repository.NewCollectionLogRepository(database.DB)

	queue := jobs.NewQueue(cfg.RedisAddr)

	state := scraper.NewState()
	controller := scraper.NewController(state, fetcher, catalog,
		scraper.WithNotifier(wsHub),
		scraper.WithRunRecorder(runRepo),
		scraper.WithLauncher(jobs.Launcher(queue)),
		scraper.WithDefaults(
			time.Duration(cfg.PageDelayMs)*time.Millisecond,
			time.Duration(cfg.RequestTimeoutMs)*time.Millisecond,
		),
	)

	queue.RegisterHandler(jobs.TaskScrapeRun, jobs.NewScrapeHandler(controller))
	if err := queue.Start(); err != nil {
		log.Fatalf("job queue failed to start: %v", err)
	}
	defer queue.Stop()

	configRepo := repository.NewScrapeConfigRepository(database.DB)
	sched := scheduler.New(configRepo, controller)
	if err := sched.InitializeAll(); err != nil {
		log.Printf("scheduler: could not arm persisted configs: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	srv := api.NewServer(cfg, database, controller, sched, wsHub)

	httpServer := &http.Server{
		Addr:        ":" + strconv.Itoa(cfg.Port),
		Handler:     srv,
		ReadTimeout: 15 * time.Second,
		// SSE streams stay open for the life of a job.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("listening on :%d", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpServer.Shutdown(ctx)
}
