package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustinTDCT/VidVault/internal/config"
	"github.com/JustinTDCT/VidVault/internal/db"
	"github.com/JustinTDCT/VidVault/internal/models"
	"github.com/JustinTDCT/VidVault/internal/scheduler"
	"github.com/JustinTDCT/VidVault/internal/scraper"
)

type noopFetcher struct{}

func (noopFetcher) FetchPage(ctx context.Context, jobType models.JobType, page int, keyword string, timeout time.Duration) ([]models.RawItem, error) {
	return nil, nil
}

type noopStore struct{}

func (noopStore) VideoByTitle(string) (*models.Video, error)  { return nil, nil }
func (noopStore) VideoBySlug(string) (*models.Video, error)   { return nil, nil }
func (noopStore) CreateVideo(*models.Video) error             { return nil }
func (noopStore) UpdateVideo(*models.Video) error             { return nil }
func (noopStore) CategoryByName(string) (*models.Category, error) {
	return nil, nil
}
func (noopStore) CreateCategory(*models.Category) error { return nil }
func (noopStore) UpdateCategory(*models.Category) error { return nil }
func (noopStore) ModelByName(string) (*models.Model, error) {
	return nil, nil
}
func (noopStore) CreateModel(*models.Model) error { return nil }
func (noopStore) UpdateModel(*models.Model) error { return nil }
func (noopStore) ReplaceVideoLinks(videoID uuid.UUID, categoryIDs, modelIDs []uuid.UUID) error {
	return nil
}

// newTestServer wires a server whose scraper never reaches the database.
// The launcher holds accepted runs so tests control when (or if) they run.
func newTestServer(launch scraper.Launcher) (*Server, *scraper.Controller) {
	opts := []scraper.Option{scraper.WithDefaults(time.Millisecond, time.Second)}
	if launch != nil {
		opts = append(opts, scraper.WithLauncher(launch))
	}
	controller := scraper.NewController(scraper.NewState(), noopFetcher{}, noopStore{}, opts...)

	database := &db.DB{}
	sched := scheduler.New(nil, controller)
	srv := NewServer(config.Load(), database, controller, sched, NewWSHub())
	return srv, controller
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestStartAccepted(t *testing.T) {
	srv, _ := newTestServer(func(p scraper.StartParams) error { return nil })

	rec := doJSON(t, srv, http.MethodPost, "/scraper/start",
		`{"type":"movies","start_page":1,"end_page":3,"keyword":"ava"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "movies")
}

func TestStartRejectedWhileRunning(t *testing.T) {
	srv, _ := newTestServer(func(p scraper.StartParams) error { return nil })

	first := doJSON(t, srv, http.MethodPost, "/scraper/start",
		`{"type":"movies","start_page":1,"end_page":1}`)
	require.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, srv, http.MethodPost, "/scraper/start",
		`{"type":"movies","start_page":1,"end_page":1}`)
	assert.Equal(t, http.StatusConflict, second.Code)

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestStartInvalidRange(t *testing.T) {
	srv, _ := newTestServer(nil)

	rec := doJSON(t, srv, http.MethodPost, "/scraper/start",
		`{"type":"movies","start_page":9,"end_page":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStopAndResetRoundTrip(t *testing.T) {
	srv, controller := newTestServer(func(p scraper.StartParams) error { return nil })

	doJSON(t, srv, http.MethodPost, "/scraper/start", `{"type":"movies","start_page":1,"end_page":1}`)
	require.True(t, controller.Running())

	// Reset is refused while the slot is held.
	rec := doJSON(t, srv, http.MethodPost, "/scraper/reset", `{}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/scraper/stop", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, controller.Running())

	rec = doJSON(t, srv, http.MethodPost, "/scraper/reset", `{}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStatusSnapshot(t *testing.T) {
	srv, controller := newTestServer(func(p scraper.StartParams) error { return nil })
	doJSON(t, srv, http.MethodPost, "/scraper/start", `{"type":"movies","start_page":1,"end_page":4}`)

	rec := doJSON(t, srv, http.MethodGet, "/scraper/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool                `json:"success"`
		Status  models.ScrapeStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Status.IsRunning)
	assert.Equal(t, models.JobTypeMovies, resp.Status.JobType)
	assert.Equal(t, 4, resp.Status.TotalPages)

	controller.Stop()
}

func TestStatusStreamClosesWhenIdle(t *testing.T) {
	srv, _ := newTestServer(nil)

	rec := doJSON(t, srv, http.MethodGet, "/scraper/status/stream", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	// One final frame for an idle engine, then the feed ends.
	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "data: "))
	require.True(t, strings.HasSuffix(body, "\n\n"))
	assert.Equal(t, 1, strings.Count(body, "data: "))

	var frame struct {
		Success bool                `json:"success"`
		Status  models.ScrapeStatus `json:"status"`
	}
	payload := strings.TrimSuffix(strings.TrimPrefix(body, "data: "), "\n\n")
	require.NoError(t, json.Unmarshal([]byte(payload), &frame))
	assert.True(t, frame.Success)
	assert.False(t, frame.Status.IsRunning)
}

func TestAutoCreateValidation(t *testing.T) {
	srv, _ := newTestServer(nil)

	rec := doJSON(t, srv, http.MethodPost, "/scraper/auto",
		`{"enabled":true,"interval":0,"type":"movies","start_page":1,"end_page":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/scraper/auto",
		`{"enabled":true,"interval":30,"type":"music","start_page":1,"end_page":3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAutoDeleteInvalidID(t *testing.T) {
	srv, _ := newTestServer(nil)

	rec := doJSON(t, srv, http.MethodDelete, "/scraper/auto?id=not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
