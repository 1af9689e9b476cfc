package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/JustinTDCT/VidVault/internal/scraper"
)

type ScrapeHandler struct {
	controller *scraper.Controller
}

func NewScrapeHandler(controller *scraper.Controller) *ScrapeHandler {
	return &ScrapeHandler{controller: controller}
}

// ProcessTask runs one accepted scrape job. The single-flight slot was
// claimed by Controller.Start before the task was enqueued; asynq must not
// retry a consumed slot, so failures surface in the job state only.
func (h *ScrapeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var p scraper.StartParams
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	log.Printf("Job: running %s scrape, pages %d-%d", p.JobType, p.StartPage, p.EndPage)
	h.controller.Run(p)
	return nil
}

// Launcher returns the enqueue function wired into the scrape controller.
func Launcher(q *Queue) scraper.Launcher {
	return func(p scraper.StartParams) error {
		_, err := q.Enqueue(TaskScrapeRun, p, asynq.MaxRetry(0))
		return err
	}
}
