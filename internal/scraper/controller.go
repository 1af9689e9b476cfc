package scraper

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/JustinTDCT/VidVault/internal/models"
)

var (
	ErrAlreadyRunning   = errors.New("a scrape job is already running")
	ErrInvalidPageRange = errors.New("invalid page range")
	ErrInvalidJobType   = errors.New("invalid job type")
)

// Fetcher retrieves one upstream page. Implemented by upstream.Client.
type Fetcher interface {
	FetchPage(ctx context.Context, jobType models.JobType, page int, keyword string, timeout time.Duration) ([]models.RawItem, error)
}

// Notifier pushes live status events to connected observers. The controller
// never blocks on it.
type Notifier interface {
	Broadcast(event string, data interface{})
}

// RunRecorder persists one history row per finished run.
type RunRecorder interface {
	Create(l *models.CollectionLog) error
}

// StartParams describes one requested scrape run.
type StartParams struct {
	JobType          models.JobType `json:"type"`
	StartPage        int            `json:"start_page"`
	EndPage          int            `json:"end_page"`
	Keyword          string         `json:"keyword,omitempty"`
	UpdateExisting   bool           `json:"update_existing"`
	PageDelayMs      int            `json:"page_delay_ms,omitempty"`
	RequestTimeoutMs int            `json:"request_timeout_ms,omitempty"`
}

// Launcher hands an accepted run to whatever executes it: the asynq queue in
// production, a plain goroutine in tests.
type Launcher func(p StartParams) error

// Controller orchestrates one scrape job end to end. It owns all writes to
// its State.
type Controller struct {
	state     *State
	fetcher   Fetcher
	processor *Processor
	notifier  Notifier
	runs      RunRecorder
	launch    Launcher

	defaultDelay   time.Duration
	defaultTimeout time.Duration
}

type Option func(*Controller)

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

func WithRunRecorder(r RunRecorder) Option {
	return func(c *Controller) { c.runs = r }
}

func WithLauncher(l Launcher) Option {
	return func(c *Controller) { c.launch = l }
}

func WithDefaults(pageDelay, requestTimeout time.Duration) Option {
	return func(c *Controller) {
		c.defaultDelay = pageDelay
		c.defaultTimeout = requestTimeout
	}
}

func NewController(state *State, fetcher Fetcher, store Store, opts ...Option) *Controller {
	c := &Controller{
		state:          state,
		fetcher:        fetcher,
		processor:      NewProcessor(store),
		defaultDelay:   500 * time.Millisecond,
		defaultTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.launch == nil {
		c.launch = func(p StartParams) error {
			go c.Run(p)
			return nil
		}
	}
	return c
}

func (c *Controller) State() *State {
	return c.state
}

func (c *Controller) Running() bool {
	return c.state.IsRunning()
}

// Start validates the request, claims the single-flight slot and hands the
// run to the launcher. The page loop runs in the background; callers get an
// answer before any page is fetched.
func (c *Controller) Start(p StartParams) error {
	if !p.JobType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidJobType, p.JobType)
	}
	if p.StartPage < 1 || p.EndPage < p.StartPage {
		return fmt.Errorf("%w: %d-%d", ErrInvalidPageRange, p.StartPage, p.EndPage)
	}

	totalPages := p.EndPage - p.StartPage + 1
	if !c.state.TryAcquire(p.JobType, p.Keyword, totalPages) {
		return ErrAlreadyRunning
	}

	if err := c.launch(p); err != nil {
		c.state.Errorf("", "failed to launch job: %v", err)
		c.state.Finish()
		return fmt.Errorf("launch scrape job: %w", err)
	}
	log.Printf("Scraper: %s job accepted, pages %d-%d", p.JobType, p.StartPage, p.EndPage)
	return nil
}

// Stop requests cooperative cancellation. The loop notices at the top of its
// next iteration; an in-flight page still completes.
func (c *Controller) Stop() {
	if c.state.RequestStop() {
		log.Printf("Scraper: stop requested")
		c.broadcast()
	}
}

// Reset clears stale state from a previous run. Refused while running.
func (c *Controller) Reset() error {
	return c.state.Reset()
}

// Run executes the page loop. It expects the single-flight slot to already be
// held (Start acquired it before launching).
func (c *Controller) Run(p StartParams) {
	delay := c.defaultDelay
	if p.PageDelayMs > 0 {
		delay = time.Duration(p.PageDelayMs) * time.Millisecond
	}
	timeout := c.defaultTimeout
	if p.RequestTimeoutMs > 0 {
		timeout = time.Duration(p.RequestTimeoutMs) * time.Millisecond
	}

	defer c.finalize(p)

	// Burst 1: the first page goes immediately, every following page waits
	// out the courtesy delay. Nothing is slept after the final page.
	limiter := rate.NewLimiter(rate.Every(delay), 1)

	totalPages := p.EndPage - p.StartPage + 1
	for page := p.StartPage; page <= p.EndPage; page++ {
		if !c.state.IsRunning() {
			break
		}
		if err := limiter.Wait(context.Background()); err != nil {
			break
		}

		c.state.SetPage(page, page-p.StartPage+1)
		c.state.Info(fmt.Sprintf("Processing page %d", page))
		c.broadcast()

		items, err := c.fetcher.FetchPage(context.Background(), p.JobType, page, p.Keyword, timeout)
		if err != nil {
			// One bad page never sinks the job.
			c.state.AddErrors(1)
			c.state.Errorf("", "Page %d failed: %v", page, err)
			log.Printf("Scraper: page %d fetch failed: %v", page, err)
			continue
		}

		if len(items) == 0 {
			c.state.Info(fmt.Sprintf("No items on page %d, stopping", page))
			log.Printf("Scraper: empty page %d, treating as end of catalog", page)
			break
		}

		res := c.processor.Process(p.JobType, items, p.UpdateExisting)
		c.state.AddCounts(res.Processed, res.Created, res.Updated, res.Errors)
		for _, entry := range res.Logs {
			c.state.AppendLog(entry)
		}
		c.state.Info(fmt.Sprintf("Page %d done: %d processed, %d created, %d updated, %d errors (%d/%d)",
			page, res.Processed, res.Created, res.Updated, res.Errors, page-p.StartPage+1, totalPages))

		c.state.AddTotal(len(items))
		c.broadcast()
	}
}

// finalize always runs, even when the loop panics: the running flag must
// never be left set by a dead loop.
func (c *Controller) finalize(p StartParams) {
	if r := recover(); r != nil {
		c.state.AddErrors(1)
		c.state.Errorf("", "job crashed: %v", r)
		log.Printf("Scraper: job panicked: %v", r)
	}

	stopped := c.state.Stopped()
	c.state.Finish()

	snap := c.state.Snapshot()
	c.state.Info(fmt.Sprintf("Job finished: %d processed, %d created, %d updated, %d errors, %d total",
		snap.Processed, snap.Created, snap.Updated, snap.Errors, snap.Total))
	log.Printf("Scraper: %s job finished: processed=%d created=%d updated=%d errors=%d total=%d",
		p.JobType, snap.Processed, snap.Created, snap.Updated, snap.Errors, snap.Total)

	c.recordRun(p, snap, stopped)
	c.broadcast()
}

func (c *Controller) recordRun(p StartParams, snap models.ScrapeStatus, stopped bool) {
	if c.runs == nil {
		return
	}
	status := models.RunCompleted
	switch {
	case stopped:
		status = models.RunStopped
	case snap.Errors > 0:
		status = models.RunPartial
	}
	entry := &models.CollectionLog{
		JobType:    p.JobType,
		Keyword:    p.Keyword,
		TotalPages: snap.TotalPages,
		Total:      snap.Total,
		Processed:  snap.Processed,
		Created:    snap.Created,
		Updated:    snap.Updated,
		Errors:     snap.Errors,
		StartedAt:  c.state.StartedAt(),
		FinishedAt: time.Now(),
		Status:     status,
	}
	if err := c.runs.Create(entry); err != nil {
		log.Printf("Scraper: could not record run history: %v", err)
	}
}

func (c *Controller) broadcast() {
	if c.notifier == nil {
		return
	}
	c.notifier.Broadcast("scrape:status", c.state.Snapshot())
}
