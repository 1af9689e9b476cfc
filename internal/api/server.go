package api

import (
	"net/http"

	"github.com/JustinTDCT/VidVault/internal/config"
	"github.com/JustinTDCT/VidVault/internal/db"
	"github.com/JustinTDCT/VidVault/internal/httputil"
	"github.com/JustinTDCT/VidVault/internal/repository"
	"github.com/JustinTDCT/VidVault/internal/scheduler"
	"github.com/JustinTDCT/VidVault/internal/scraper"
	"github.com/JustinTDCT/VidVault/internal/version"
)

type Server struct {
	config     *config.Config
	db         *db.DB
	controller *scraper.Controller
	scheduler  *scheduler.Scheduler
	configRepo *repository.ScrapeConfigRepository
	runRepo    *repository.CollectionLogRepository
	wsHub      *WSHub
	router     *http.ServeMux
}

func NewServer(cfg *config.Config, database *db.DB, controller *scraper.Controller,
	sched *scheduler.Scheduler, wsHub *WSHub) *Server {

	s := &Server{
		config:     cfg,
		db:         database,
		controller: controller,
		scheduler:  sched,
		configRepo: repository.NewScrapeConfigRepository(database.DB),
		runRepo:    repository.NewCollectionLogRepository(database.DB),
		wsHub:      wsHub,
		router:     http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ConfigRepo() *repository.ScrapeConfigRepository {
	return s.configRepo
}

func (s *Server) WSHub() *WSHub {
	return s.wsHub
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)

	// Job lifecycle
	s.router.HandleFunc("POST /scraper/start", s.handleScraperStart)
	s.router.HandleFunc("POST /scraper/stop", s.handleScraperStop)
	s.router.HandleFunc("POST /scraper/reset", s.handleScraperReset)

	// Status
	s.router.HandleFunc("GET /scraper/status", s.handleScraperStatus)
	s.router.HandleFunc("GET /scraper/status/stream", s.handleScraperStatusStream)
	s.router.HandleFunc("GET /scraper/ws", s.handleWebSocket)
	s.router.HandleFunc("GET /scraper/runs", s.handleScraperRuns)

	// Auto-scrape configs
	s.router.HandleFunc("GET /scraper/auto", s.handleAutoList)
	s.router.HandleFunc("POST /scraper/auto", s.handleAutoCreate)
	s.router.HandleFunc("PUT /scraper/auto", s.handleAutoUpdate)
	s.router.HandleFunc("DELETE /scraper/auto", s.handleAutoDelete)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"version": version.Load().Version,
	})
}
