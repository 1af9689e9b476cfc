package scraper

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JustinTDCT/VidVault/internal/models"
)

// Store is the slice of the catalog store the processor needs. Lookups return
// (nil, nil) when no row matches.
type Store interface {
	VideoByTitle(title string) (*models.Video, error)
	VideoBySlug(slug string) (*models.Video, error)
	CreateVideo(v *models.Video) error
	UpdateVideo(v *models.Video) error
	ReplaceVideoLinks(videoID uuid.UUID, categoryIDs, modelIDs []uuid.UUID) error

	CategoryByName(name string) (*models.Category, error)
	CreateCategory(c *models.Category) error
	UpdateCategory(c *models.Category) error

	ModelByName(name string) (*models.Model, error)
	CreateModel(m *models.Model) error
	UpdateModel(m *models.Model) error
}

// Result accumulates the outcome of one processed batch. Processed counts
// creates and updates only, never skips.
type Result struct {
	Processed int
	Created   int
	Updated   int
	Errors    int
	Logs      []models.ScrapeLogEntry
}

type itemOutcome string

const (
	outcomeCreated itemOutcome = "created"
	outcomeUpdated itemOutcome = "updated"
	outcomeSkipped itemOutcome = "skipped"
)

// Processor maps raw upstream items into catalog store mutations.
type Processor struct {
	store Store

	// viewEstimate feeds the model total_views bump on update. The upstream
	// API exposes no per-model aggregate, so this is a coarse estimate.
	viewEstimate func() int
}

func NewProcessor(store Store) *Processor {
	return &Processor{
		store: store,
		viewEstimate: func() int {
			return 1000 + rand.Intn(5000)
		},
	}
}

// Process dispatches every item in the batch by job type. A failing item is
// counted and logged but never aborts the batch.
func (p *Processor) Process(jobType models.JobType, items []models.RawItem, updateExisting bool) Result {
	var res Result
	for _, item := range items {
		outcome, title, note, err := p.processItem(jobType, item, updateExisting)
		if err != nil {
			res.Errors++
			res.Logs = append(res.Logs, itemLog(jobType, title, models.LogError, err.Error()))
			continue
		}
		switch outcome {
		case outcomeCreated:
			res.Processed++
			res.Created++
			res.Logs = append(res.Logs, itemLog(jobType, title, models.LogCreated, "Created"))
		case outcomeUpdated:
			res.Processed++
			res.Updated++
			res.Logs = append(res.Logs, itemLog(jobType, title, models.LogUpdated, "Updated"))
		case outcomeSkipped:
			if note == "" {
				note = "Skipped (no changes)"
			}
			res.Logs = append(res.Logs, itemLog(jobType, title, models.LogInfo, note))
		}
	}
	return res
}

func (p *Processor) processItem(jobType models.JobType, item models.RawItem, updateExisting bool) (itemOutcome, string, string, error) {
	switch jobType {
	case models.JobTypeMovies:
		outcome, err := p.processMovie(item, updateExisting)
		return outcome, item.Title, "", err
	case models.JobTypeCategories:
		outcome, err := p.processCategory(item)
		return outcome, item.Name, "", err
	case models.JobTypeActors:
		outcome, err := p.processModel(item)
		return outcome, item.Name, "", err
	case models.JobTypeCountries:
		// Country taxonomy is not persisted yet; items are acknowledged only.
		return outcomeSkipped, item.Name, "Country ingestion not yet supported", nil
	default:
		return outcomeSkipped, "", "", fmt.Errorf("unknown job type %q", jobType)
	}
}

// ──────────────────── Movies ────────────────────

func (p *Processor) processMovie(item models.RawItem, updateExisting bool) (itemOutcome, error) {
	duration := formatDuration(item.Duration)

	videoURL := ""
	if len(item.EmbeddedServers) > 0 {
		videoURL = item.EmbeddedServers[0].URL
	}

	category := strings.Join(item.Categories, ", ")
	model := strings.Join(item.Actors, ", ")
	tags := strings.Join(item.Tags, ", ")

	// Taxonomy is synced before the video decision so categories and models
	// exist even when the video itself turns out to be a no-op.
	categoryIDs, err := p.ensureCategories(item.Categories)
	if err != nil {
		return outcomeSkipped, err
	}
	modelIDs, err := p.ensureModels(item.Actors)
	if err != nil {
		return outcomeSkipped, err
	}

	// Titles are the primary identity; slugs are more stable under minor
	// upstream title edits, so fall back to an exact slug match.
	existing, err := p.store.VideoByTitle(item.Title)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("lookup by title: %w", err)
	}
	slug := Slugify(item.Title)
	if existing == nil {
		existing, err = p.store.VideoBySlug(slug)
		if err != nil {
			return outcomeSkipped, fmt.Errorf("lookup by slug: %w", err)
		}
	}

	if existing == nil {
		v := &models.Video{
			Title:       item.Title,
			Slug:        slug,
			Description: item.Description,
			Thumbnail:   item.Thumb,
			Duration:    duration,
			VideoURL:    videoURL,
			Category:    category,
			Model:       model,
			Tags:        tags,
			Views:       item.Views,
			Likes:       item.Likes,
		}
		if err := p.store.CreateVideo(v); err != nil {
			return outcomeSkipped, fmt.Errorf("create video: %w", err)
		}
		if err := p.store.ReplaceVideoLinks(v.ID, categoryIDs, modelIDs); err != nil {
			return outcomeSkipped, fmt.Errorf("link video: %w", err)
		}
		return outcomeCreated, nil
	}

	needsUpdate := existing.Description != item.Description ||
		existing.Thumbnail != item.Thumb ||
		existing.Duration != duration ||
		existing.VideoURL != videoURL ||
		existing.Category != category ||
		existing.Model != model

	if !updateExisting && !needsUpdate {
		return outcomeSkipped, nil
	}

	existing.Description = item.Description
	existing.Thumbnail = item.Thumb
	existing.Duration = duration
	existing.VideoURL = videoURL
	existing.Category = category
	existing.Model = model
	existing.Tags = tags
	// Views and likes only ever go up; featured stays under local curation.
	if item.Views > existing.Views {
		existing.Views = item.Views
	}
	if item.Likes > existing.Likes {
		existing.Likes = item.Likes
	}

	if err := p.store.UpdateVideo(existing); err != nil {
		return outcomeSkipped, fmt.Errorf("update video: %w", err)
	}
	if err := p.store.ReplaceVideoLinks(existing.ID, categoryIDs, modelIDs); err != nil {
		return outcomeSkipped, fmt.Errorf("link video: %w", err)
	}
	return outcomeUpdated, nil
}

func (p *Processor) ensureCategories(names []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, name := range names {
		if name == "" {
			continue
		}
		c, err := p.store.CategoryByName(name)
		if err != nil {
			return nil, fmt.Errorf("lookup category %q: %w", name, err)
		}
		if c == nil {
			c = &models.Category{
				Name:        name,
				Slug:        Slugify(name),
				Description: fmt.Sprintf("%s videos", name),
			}
			if err := p.store.CreateCategory(c); err != nil {
				return nil, fmt.Errorf("create category %q: %w", name, err)
			}
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (p *Processor) ensureModels(names []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, name := range names {
		if name == "" {
			continue
		}
		m, err := p.store.ModelByName(name)
		if err != nil {
			return nil, fmt.Errorf("lookup model %q: %w", name, err)
		}
		if m == nil {
			m = &models.Model{
				Name: name,
				Slug: Slugify(name),
				Bio:  fmt.Sprintf("Videos featuring %s", name),
			}
			if err := p.store.CreateModel(m); err != nil {
				return nil, fmt.Errorf("create model %q: %w", name, err)
			}
		}
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// ──────────────────── Categories ────────────────────

func (p *Processor) processCategory(item models.RawItem) (itemOutcome, error) {
	existing, err := p.store.CategoryByName(item.Name)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("lookup category: %w", err)
	}
	if existing == nil {
		c := &models.Category{
			Name:        item.Name,
			Slug:        Slugify(item.Name),
			Description: fmt.Sprintf("%s videos", item.Name),
			VideoCount:  item.VideoCount,
		}
		if err := p.store.CreateCategory(c); err != nil {
			return outcomeSkipped, fmt.Errorf("create category: %w", err)
		}
		return outcomeCreated, nil
	}
	existing.VideoCount += item.VideoCount
	if err := p.store.UpdateCategory(existing); err != nil {
		return outcomeSkipped, fmt.Errorf("update category: %w", err)
	}
	return outcomeUpdated, nil
}

// ──────────────────── Models ────────────────────

func (p *Processor) processModel(item models.RawItem) (itemOutcome, error) {
	existing, err := p.store.ModelByName(item.Name)
	if err != nil {
		return outcomeSkipped, fmt.Errorf("lookup model: %w", err)
	}
	if existing == nil {
		m := &models.Model{
			Name: item.Name,
			Slug: Slugify(item.Name),
			Bio:  fmt.Sprintf("Videos featuring %s", item.Name),
		}
		if err := p.store.CreateModel(m); err != nil {
			return outcomeSkipped, fmt.Errorf("create model: %w", err)
		}
		return outcomeCreated, nil
	}
	// No per-model aggregate upstream; bump by a coarse estimate.
	existing.TotalViews += p.viewEstimate()
	if err := p.store.UpdateModel(existing); err != nil {
		return outcomeSkipped, fmt.Errorf("update model: %w", err)
	}
	return outcomeUpdated, nil
}

// ──────────────────── Helpers ────────────────────

func itemLog(jobType models.JobType, title string, status models.LogStatus, message string) models.ScrapeLogEntry {
	return models.ScrapeLogEntry{
		Timestamp: time.Now(),
		JobType:   jobType,
		Title:     title,
		Status:    status,
		Message:   message,
	}
}

// formatDuration renders upstream seconds as M:SS.
func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// Slugify lowercases a title and collapses non-alphanumeric runs to hyphens.
func Slugify(s string) string {
	var b strings.Builder
	prevHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
