package scraper

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustinTDCT/VidVault/internal/models"
)

// memStore is an in-memory scraper.Store for tests.
type memStore struct {
	videos     map[uuid.UUID]*models.Video
	categories map[string]*models.Category
	perfModels map[string]*models.Model

	linkCalls   int
	failOnTitle string
}

func newMemStore() *memStore {
	return &memStore{
		videos:     make(map[uuid.UUID]*models.Video),
		categories: make(map[string]*models.Category),
		perfModels: make(map[string]*models.Model),
	}
}

func copyVideo(v *models.Video) *models.Video {
	cp := *v
	return &cp
}

func (s *memStore) VideoByTitle(title string) (*models.Video, error) {
	if s.failOnTitle != "" && title == s.failOnTitle {
		return nil, errors.New("store unavailable")
	}
	for _, v := range s.videos {
		if v.Title == title {
			return copyVideo(v), nil
		}
	}
	return nil, nil
}

func (s *memStore) VideoBySlug(slug string) (*models.Video, error) {
	for _, v := range s.videos {
		if v.Slug == slug {
			return copyVideo(v), nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateVideo(v *models.Video) error {
	v.ID = uuid.New()
	s.videos[v.ID] = copyVideo(v)
	return nil
}

func (s *memStore) UpdateVideo(v *models.Video) error {
	if _, ok := s.videos[v.ID]; !ok {
		return errors.New("video not found")
	}
	s.videos[v.ID] = copyVideo(v)
	return nil
}

func (s *memStore) ReplaceVideoLinks(videoID uuid.UUID, categoryIDs, modelIDs []uuid.UUID) error {
	s.linkCalls++
	return nil
}

func (s *memStore) CategoryByName(name string) (*models.Category, error) {
	if c, ok := s.categories[name]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (s *memStore) CreateCategory(c *models.Category) error {
	c.ID = uuid.New()
	cp := *c
	s.categories[c.Name] = &cp
	return nil
}

func (s *memStore) UpdateCategory(c *models.Category) error {
	cp := *c
	s.categories[c.Name] = &cp
	return nil
}

func (s *memStore) ModelByName(name string) (*models.Model, error) {
	if m, ok := s.perfModels[name]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (s *memStore) CreateModel(m *models.Model) error {
	m.ID = uuid.New()
	cp := *m
	s.perfModels[m.Name] = &cp
	return nil
}

func (s *memStore) UpdateModel(m *models.Model) error {
	cp := *m
	s.perfModels[m.Name] = &cp
	return nil
}

func (s *memStore) videoByTitle(t *testing.T, title string) *models.Video {
	t.Helper()
	v, err := s.VideoByTitle(title)
	require.NoError(t, err)
	require.NotNil(t, v)
	return v
}

func movieItem() models.RawItem {
	return models.RawItem{
		Title:       "Sunset Drive",
		Description: "A long ride home",
		Thumb:       "https://img.example/sunset.jpg",
		Duration:    754,
		EmbeddedServers: []models.EmbeddedServer{
			{Name: "primary", URL: "https://embed.example/v/123"},
			{Name: "backup", URL: "https://embed.example/v/456"},
		},
		Categories: []string{"Drama", "Road"},
		Actors:     []string{"Ava West"},
		Tags:       []string{"sunset", "drive"},
		Views:      50,
		Likes:      5,
	}
}

// ──────────────────── Movies ────────────────────

func TestProcessMovieCreatesVideoAndTaxonomy(t *testing.T) {
	store := newMemStore()
	p := NewProcessor(store)

	res := p.Process(models.JobTypeMovies, []models.RawItem{movieItem()}, false)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, 0, res.Errors)

	v := store.videoByTitle(t, "Sunset Drive")
	assert.Equal(t, "sunset-drive", v.Slug)
	assert.Equal(t, "12:34", v.Duration)
	assert.Equal(t, "https://embed.example/v/123", v.VideoURL)
	assert.Equal(t, "Drama, Road", v.Category)
	assert.Equal(t, "Ava West", v.Model)

	// Categories and models are auto-created from the item lists.
	assert.Len(t, store.categories, 2)
	assert.Len(t, store.perfModels, 1)
	assert.Equal(t, 1, store.linkCalls)
}

func TestProcessMovieIdempotentUpsert(t *testing.T) {
	store := newMemStore()
	p := NewProcessor(store)
	item := movieItem()

	first := p.Process(models.JobTypeMovies, []models.RawItem{item}, false)
	assert.Equal(t, 1, first.Created)
	assert.Equal(t, 0, first.Updated)

	// Nothing changed: the second pass must skip entirely.
	second := p.Process(models.JobTypeMovies, []models.RawItem{item}, false)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, 0, second.Processed)
	require.Len(t, second.Logs, 1)
	assert.Equal(t, models.LogInfo, second.Logs[0].Status)
}

func TestProcessMovieForceUpdate(t *testing.T) {
	store := newMemStore()
	p := NewProcessor(store)
	item := movieItem()

	first := p.Process(models.JobTypeMovies, []models.RawItem{item}, true)
	assert.Equal(t, 1, first.Created)

	// updateExisting forces a write even though no field differs.
	second := p.Process(models.JobTypeMovies, []models.RawItem{item}, true)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Updated)
	assert.Equal(t, 1, second.Processed)
}

func TestProcessMovieUpdatesWhenFieldsDiffer(t *testing.T) {
	store := newMemStore()
	p := NewProcessor(store)
	item := movieItem()

	p.Process(models.JobTypeMovies, []models.RawItem{item}, false)

	item.Description = "A longer ride home"
	res := p.Process(models.JobTypeMovies, []models.RawItem{item}, false)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, "A longer ride home", store.videoByTitle(t, "Sunset Drive").Description)
}

func TestProcessMovieViewsNeverDecrease(t *testing.T) {
	store := newMemStore()
	p := NewProcessor(store)

	item := movieItem()
	item.Views = 200
	item.Likes = 40
	p.Process(models.JobTypeMovies, []models.RawItem{item}, false)

	incoming := movieItem()
	incoming.Views = 50
	incoming.Likes = 10
	res := p.Process(models.JobTypeMovies, []models.RawItem{incoming}, true)
	require.Equal(t, 1, res.Updated)

	v := store.videoByTitle(t, "Sunset Drive")
	assert.Equal(t, 200, v.Views)
	assert.Equal(t, 40, v.Likes)
}

func TestProcessMovieFeaturedPreserved(t *testing.T) {
	store := newMemStore()
	p := NewProcessor(store)

	item := movieItem()
	p.Process(models.JobTypeMovies, []models.RawItem{item}, false)

	// Curate the stored row, then force an update from upstream.
	existing := store.videoByTitle(t, "Sunset Drive")
	existing.Featured = true
	require.NoError(t, store.UpdateVideo(existing))

	res := p.Process(models.JobTypeMovies, []models.RawItem{item}, true)
	require.Equal(t, 1, res.Updated)
	assert.True(t, store.videoByTitle(t, "Sunset Drive").Featured)
}

func TestProcessMovieMatchesBySlugAfterTitleEdit(t *testing.T) {
	store := newMemStore()
	p := NewProcessor(store)

	p.Process(models.JobTypeMovies, []models.RawItem{movieItem()}, false)

	// Same slug, stored under a different display title upstream no longer uses.
	existing := store.videoByTitle(t, "Sunset Drive")
	existing.Title = "Sunset Drive (2019)"
	existing.Slug = "sunset-drive"
	require.NoError(t, store.UpdateVideo(existing))

	res := p.Process(models.JobTypeMovies, []models.RawItem{movieItem()}, true)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.Updated)
}

func TestProcessMovieTaxonomySyncedEvenWhenVideoSkipped(t *testing.T) {
	store := newMemStore()
	p := NewProcessor(store)
	item := movieItem()

	p.Process(models.JobTypeMovies, []models.RawItem{item}, false)

	item.Categories = append(item.Categories, "Night")
	item.Actors = append(item.Actors, "Mia Cole")
	// The video row changes (category string differs), but even a skipped
	// video must leave its taxonomy created; check the stronger case too.
	p.Process(models.JobTypeMovies, []models.RawItem{item}, false)
	assert.Contains(t, store.categories, "Night")
	assert.Contains(t, store.perfModels, "Mia Cole")
}

func TestProcessCountsStoreFailures(t *testing.T) {
	store := newMemStore()
	store.failOnTitle = "Sunset Drive"
	p := NewProcessor(store)

	other := movieItem()
	other.Title = "Harbor Nights"

	res := p.Process(models.JobTypeMovies, []models.RawItem{movieItem(), other}, false)
	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, 1, res.Created)
	require.Len(t, res.Logs, 2)
	assert.Equal(t, models.LogError, res.Logs[0].Status)
}

// ──────────────────── Categories / Models / Countries ────────────────────

func TestProcessCategoryCreateThenIncrement(t *testing.T) {
	store := newMemStore()
	p := NewProcessor(store)
	item := models.RawItem{Name: "Drama", VideoCount: 12}

	res := p.Process(models.JobTypeCategories, []models.RawItem{item}, false)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 12, store.categories["Drama"].VideoCount)

	res = p.Process(models.JobTypeCategories, []models.RawItem{item}, false)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 24, store.categories["Drama"].VideoCount)
}

func TestProcessModelCreateThenEstimateBump(t *testing.T) {
	store := newMemStore()
	p := NewProcessor(store)
	p.viewEstimate = func() int { return 1500 }
	item := models.RawItem{Name: "Ava West"}

	res := p.Process(models.JobTypeActors, []models.RawItem{item}, false)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 0, store.perfModels["Ava West"].TotalViews)

	res = p.Process(models.JobTypeActors, []models.RawItem{item}, false)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1500, store.perfModels["Ava West"].TotalViews)
}

func TestProcessCountriesIsLoggedNoOp(t *testing.T) {
	store := newMemStore()
	p := NewProcessor(store)

	res := p.Process(models.JobTypeCountries, []models.RawItem{{Name: "Japan"}}, false)
	assert.Equal(t, 0, res.Processed)
	assert.Equal(t, 0, res.Errors)
	require.Len(t, res.Logs, 1)
	assert.Equal(t, models.LogInfo, res.Logs[0].Status)
	assert.Equal(t, "Japan", res.Logs[0].Title)
}

// ──────────────────── Helpers ────────────────────

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", formatDuration(0))
	assert.Equal(t, "0:59", formatDuration(59))
	assert.Equal(t, "1:00", formatDuration(60))
	assert.Equal(t, "12:34", formatDuration(754))
	assert.Equal(t, "100:05", formatDuration(6005))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "sunset-drive", Slugify("Sunset Drive"))
	assert.Equal(t, "ava-west-2", Slugify("  Ava West #2! "))
	assert.Equal(t, "", Slugify("!!!"))
}
