package models

import (
	"time"

	"github.com/google/uuid"
)

// ──────────────────── Enums ────────────────────

type JobType string

const (
	JobTypeMovies     JobType = "movies"
	JobTypeCategories JobType = "categories"
	JobTypeActors     JobType = "actors"
	JobTypeCountries  JobType = "countries"
)

func (t JobType) Valid() bool {
	switch t {
	case JobTypeMovies, JobTypeCategories, JobTypeActors, JobTypeCountries:
		return true
	}
	return false
}

type LogStatus string

const (
	LogCreated LogStatus = "created"
	LogUpdated LogStatus = "updated"
	LogError   LogStatus = "error"
	LogInfo    LogStatus = "info"
)

type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunStopped   RunStatus = "stopped"
	RunPartial   RunStatus = "partial"
)

// ──────────────────── Catalog ────────────────────

type Video struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	Thumbnail   string    `json:"thumbnail" db:"thumbnail"`
	Duration    string    `json:"duration" db:"duration"`
	VideoURL    string    `json:"video_url" db:"video_url"`
	// Category and Model are comma-joined display strings; the link tables
	// video_categories / video_models carry the authoritative rows.
	Category  string    `json:"category" db:"category"`
	Model     string    `json:"model" db:"model"`
	Tags      string    `json:"tags" db:"tags"`
	Views     int       `json:"views" db:"views"`
	Likes     int       `json:"likes" db:"likes"`
	Featured  bool      `json:"featured" db:"featured"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
	VideoCount  int       `json:"video_count" db:"video_count"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Model struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Slug       string    `json:"slug" db:"slug"`
	Bio        string    `json:"bio" db:"bio"`
	TotalViews int       `json:"total_views" db:"total_views"`
	VideoCount int       `json:"video_count" db:"video_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// ──────────────────── Upstream ────────────────────

// EmbeddedServer is one hosted playback source on an upstream movie record.
type EmbeddedServer struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RawItem is one record returned by the upstream catalog API. Movie responses
// populate the movie fields; category/actor/country responses populate Name
// and VideoCount only.
type RawItem struct {
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	Thumb           string           `json:"thumb"`
	Duration        int              `json:"duration"`
	EmbeddedServers []EmbeddedServer `json:"embeddedServers"`
	Categories      []string         `json:"categories"`
	Actors          []string         `json:"actors"`
	Tags            []string         `json:"tags"`
	Views           int              `json:"views"`
	Likes           int              `json:"likes"`

	Name       string `json:"name"`
	VideoCount int    `json:"videoCount"`
}

// ──────────────────── Scrape Status ────────────────────

// MaxScrapeLogs bounds the in-memory log ring buffer of a scrape run.
const MaxScrapeLogs = 200

type ScrapeLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	JobType   JobType   `json:"job_type"`
	Title     string    `json:"title"`
	Status    LogStatus `json:"status"`
	Message   string    `json:"message"`
}

// ScrapeStatus is a point-in-time snapshot of the ingestion job state.
type ScrapeStatus struct {
	IsRunning   bool             `json:"is_running"`
	JobType     JobType          `json:"type"`
	Keyword     string           `json:"keyword,omitempty"`
	CurrentPage int              `json:"current_page"`
	TotalPages  int              `json:"total_pages"`
	Processed   int              `json:"processed"`
	Created     int              `json:"created"`
	Updated     int              `json:"updated"`
	Errors      int              `json:"errors"`
	Total       int              `json:"total"`
	CurrentItem string           `json:"current_item"`
	Logs        []ScrapeLogEntry `json:"logs"`
}

// ──────────────────── Auto-Scrape Config ────────────────────

type AutoScrapeConfig struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	Enabled         bool       `json:"enabled" db:"enabled"`
	IntervalMinutes int        `json:"interval" db:"interval_minutes"`
	JobType         JobType    `json:"type" db:"job_type"`
	StartPage       int        `json:"start_page" db:"start_page"`
	EndPage         int        `json:"end_page" db:"end_page"`
	Keyword         string     `json:"keyword,omitempty" db:"keyword"`
	UpdateExisting  bool       `json:"update_existing" db:"update_existing"`
	LastRun         *time.Time `json:"last_run,omitempty" db:"last_run"`
	NextRun         *time.Time `json:"next_run,omitempty" db:"next_run"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// ──────────────────── Run History ────────────────────

// CollectionLog is one persisted row per finished scrape run.
type CollectionLog struct {
	ID         uuid.UUID `json:"id" db:"id"`
	JobType    JobType   `json:"job_type" db:"job_type"`
	Keyword    string    `json:"keyword,omitempty" db:"keyword"`
	TotalPages int       `json:"total_pages" db:"total_pages"`
	Total      int       `json:"total" db:"total"`
	Processed  int       `json:"processed" db:"processed"`
	Created    int       `json:"created" db:"created"`
	Updated    int       `json:"updated" db:"updated"`
	Errors     int       `json:"errors" db:"errors"`
	StartedAt  time.Time `json:"started_at" db:"started_at"`
	FinishedAt time.Time `json:"finished_at" db:"finished_at"`
	Status     RunStatus `json:"status" db:"status"`
}
