package scheduler

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/JustinTDCT/VidVault/internal/models"
	"github.com/JustinTDCT/VidVault/internal/scraper"
)

// JobStarter is the slice of the scrape controller the scheduler needs.
type JobStarter interface {
	Start(p scraper.StartParams) error
	Running() bool
}

// ConfigStore persists auto-scrape configs; the scheduler is the only writer
// of last_run/next_run.
type ConfigStore interface {
	ListEnabled() ([]*models.AutoScrapeConfig, error)
	TouchRun(id uuid.UUID, lastRun, nextRun time.Time) error
}

// Scheduler arms one recurring timer per enabled auto-scrape config. Re-arming
// is always cancel-then-create, so exactly one timer exists per config id.
type Scheduler struct {
	cron    *cron.Cron
	configs ConfigStore
	starter JobStarter

	mu      sync.Mutex
	entries map[uuid.UUID]cron.EntryID
}

func New(configs ConfigStore, starter JobStarter) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		configs: configs,
		starter: starter,
		entries: make(map[uuid.UUID]cron.EntryID),
	}
}

// Start begins the cron runner.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("[scheduler] auto-scrape scheduler started")
}

// Stop halts the runner; armed entries are kept and resume on Start.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[scheduler] auto-scrape scheduler stopped")
}

// InitializeAll arms every enabled persisted config. Safe to call again after
// config changes; existing timers are replaced.
func (s *Scheduler) InitializeAll() error {
	configs, err := s.configs.ListEnabled()
	if err != nil {
		return err
	}
	for _, cfg := range configs {
		s.Arm(cfg)
	}
	log.Printf("[scheduler] armed %d auto-scrape config(s)", len(configs))
	return nil
}

// Arm installs a recurring timer for the config, replacing any existing one
// for the same id. Disabled configs are only disarmed.
func (s *Scheduler) Arm(cfg *models.AutoScrapeConfig) {
	s.Disarm(cfg.ID)
	if !cfg.Enabled || cfg.IntervalMinutes <= 0 {
		return
	}

	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	snapshot := *cfg

	s.mu.Lock()
	defer s.mu.Unlock()
	entryID := s.cron.Schedule(cron.Every(interval), cron.FuncJob(func() {
		s.tick(snapshot, interval)
	}))
	s.entries[cfg.ID] = entryID
	log.Printf("[scheduler] armed config %s: %s every %dm, pages %d-%d",
		cfg.ID, cfg.JobType, cfg.IntervalMinutes, cfg.StartPage, cfg.EndPage)
}

// Disarm cancels the timer for a config id. Idempotent.
func (s *Scheduler) Disarm(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.entries[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, id)
		log.Printf("[scheduler] disarmed config %s", id)
	}
}

// Armed reports whether a timer exists for the config id.
func (s *Scheduler) Armed(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// tick fires one scheduled run. A tick that finds a job already active is
// dropped outright, never queued.
func (s *Scheduler) tick(cfg models.AutoScrapeConfig, interval time.Duration) {
	if s.starter.Running() {
		log.Printf("[scheduler] config %s tick skipped: a job is already running", cfg.ID)
		return
	}

	now := time.Now()
	if err := s.configs.TouchRun(cfg.ID, now, now.Add(interval)); err != nil {
		log.Printf("[scheduler] config %s: could not persist run times: %v", cfg.ID, err)
	}

	err := s.starter.Start(scraper.StartParams{
		JobType:        cfg.JobType,
		StartPage:      cfg.StartPage,
		EndPage:        cfg.EndPage,
		Keyword:        cfg.Keyword,
		UpdateExisting: cfg.UpdateExisting,
	})
	if errors.Is(err, scraper.ErrAlreadyRunning) {
		// Lost the race against a manual start; drop the tick.
		log.Printf("[scheduler] config %s tick dropped: job started elsewhere", cfg.ID)
		return
	}
	if err != nil {
		log.Printf("[scheduler] config %s: start failed: %v", cfg.ID, err)
	}
}
