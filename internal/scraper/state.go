package scraper

import (
	"fmt"
	"sync"
	"time"

	"github.com/JustinTDCT/VidVault/internal/models"
)

// State is the job-context record for the ingestion engine: one writer (the
// active run), many readers (status endpoints, stream subscribers). The
// running flag doubles as the process-wide single-flight guard.
type State struct {
	mu          sync.RWMutex
	running     bool
	stopped     bool
	jobType     models.JobType
	keyword     string
	currentPage int
	totalPages  int
	processed   int
	created     int
	updated     int
	errors      int
	total       int
	currentItem string
	logs        []models.ScrapeLogEntry
	startedAt   time.Time
}

func NewState() *State {
	return &State{jobType: models.JobTypeMovies}
}

// TryAcquire claims the single-flight slot and resets the state for a fresh
// run. Returns false without touching anything when a job is already active.
func (s *State) TryAcquire(jobType models.JobType, keyword string, totalPages int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	s.stopped = false
	s.jobType = jobType
	s.keyword = keyword
	s.currentPage = 0
	s.totalPages = totalPages
	s.processed, s.created, s.updated, s.errors, s.total = 0, 0, 0, 0, 0
	s.currentItem = "Starting"
	s.logs = nil
	s.startedAt = time.Now()
	return true
}

// RequestStop flips the running flag off. The page loop observes the flag at
// the top of each iteration, so at most one more page completes. Idempotent.
func (s *State) RequestStop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return false
	}
	s.running = false
	s.stopped = true
	s.currentItem = "Stopped by user"
	s.appendLogLocked(models.ScrapeLogEntry{
		Timestamp: time.Now(),
		JobType:   s.jobType,
		Status:    models.LogInfo,
		Message:   "Stopped by user",
	})
	return true
}

// Finish marks the run terminal. A user stop keeps its own label.
func (s *State) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if !s.stopped {
		s.currentItem = "Completed"
	}
}

// Reset clears all counters and logs. Refused while a job is active.
func (s *State) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRunning
	}
	s.stopped = false
	s.jobType = models.JobTypeMovies
	s.keyword = ""
	s.currentPage = 0
	s.totalPages = 0
	s.processed, s.created, s.updated, s.errors, s.total = 0, 0, 0, 0, 0
	s.currentItem = ""
	s.logs = nil
	return nil
}

func (s *State) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *State) Stopped() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopped
}

func (s *State) StartedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startedAt
}

// SetPage advances the progress counters to the given page. pageIndex is
// 1-based within the requested range.
func (s *State) SetPage(page, pageIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPage = page
	s.currentItem = fmt.Sprintf("Page %d (%d/%d)", page, pageIndex, s.totalPages)
}

func (s *State) AddCounts(processed, created, updated, errors int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processed += processed
	s.created += created
	s.updated += updated
	s.errors += errors
}

func (s *State) AddErrors(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors += n
}

func (s *State) AddTotal(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.total += n
}

// AppendLog appends one entry to the bounded ring buffer.
func (s *State) AppendLog(entry models.ScrapeLogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLogLocked(entry)
}

func (s *State) appendLogLocked(entry models.ScrapeLogEntry) {
	s.logs = append(s.logs, entry)
	if n := len(s.logs) - models.MaxScrapeLogs; n > 0 {
		s.logs = append(s.logs[:0], s.logs[n:]...)
	}
}

// Info appends an info log for the current job type.
func (s *State) Info(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLogLocked(models.ScrapeLogEntry{
		Timestamp: time.Now(),
		JobType:   s.jobType,
		Status:    models.LogInfo,
		Message:   message,
	})
}

// Errorf appends an error log for the current job type.
func (s *State) Errorf(title, format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLogLocked(models.ScrapeLogEntry{
		Timestamp: time.Now(),
		JobType:   s.jobType,
		Title:     title,
		Status:    models.LogError,
		Message:   fmt.Sprintf(format, args...),
	})
}

// Snapshot returns a point-in-time copy of the job state, logs included.
func (s *State) Snapshot() models.ScrapeStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := make([]models.ScrapeLogEntry, len(s.logs))
	copy(logs, s.logs)
	return models.ScrapeStatus{
		IsRunning:   s.running,
		JobType:     s.jobType,
		Keyword:     s.keyword,
		CurrentPage: s.currentPage,
		TotalPages:  s.totalPages,
		Processed:   s.processed,
		Created:     s.created,
		Updated:     s.updated,
		Errors:      s.errors,
		Total:       s.total,
		CurrentItem: s.currentItem,
		Logs:        logs,
	}
}
