package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/JustinTDCT/VidVault/internal/httputil"
	"github.com/JustinTDCT/VidVault/internal/models"
	"github.com/JustinTDCT/VidVault/internal/scraper"
)

type statusResponse struct {
	Success bool                `json:"success"`
	Status  models.ScrapeStatus `json:"status"`
}

func (s *Server) handleScraperStart(w http.ResponseWriter, r *http.Request) {
	var p scraper.StartParams
	if err := httputil.ReadJSON(r, &p); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := s.controller.Start(p)
	switch {
	case errors.Is(err, scraper.ErrAlreadyRunning):
		httputil.WriteError(w, http.StatusConflict, "A scrape job is already running")
	case err != nil:
		httputil.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		httputil.WriteOK(w, fmt.Sprintf("Scrape job started: %s pages %d-%d", p.JobType, p.StartPage, p.EndPage))
	}
}

func (s *Server) handleScraperStop(w http.ResponseWriter, r *http.Request) {
	s.controller.Stop()
	httputil.WriteOK(w, "Stop requested")
}

func (s *Server) handleScraperReset(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Reset(); err != nil {
		httputil.WriteError(w, http.StatusConflict, "Cannot reset while a job is running")
		return
	}
	httputil.WriteOK(w, "Scraper state reset")
}

func (s *Server) handleScraperStatus(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, statusResponse{
		Success: true,
		Status:  s.controller.State().Snapshot(),
	})
}

// handleScraperStatusStream pushes status snapshots as Server-Sent Events: one
// immediately, then one per second while the job runs. The frame that carries
// is_running=false is the last one.
func (s *Server) handleScraperStatusStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		snap := s.controller.State().Snapshot()
		if err := writeSSEFrame(w, snap); err != nil {
			return
		}
		flusher.Flush()

		if !snap.IsRunning {
			return
		}

		select {
		case <-ticker.C:
		case <-r.Context().Done():
			return
		}
	}
}

func writeSSEFrame(w http.ResponseWriter, snap models.ScrapeStatus) error {
	frame := statusResponse{Success: true, Status: snap}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}

func (s *Server) handleScraperRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.runRepo.ListRecent(50)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "could not load run history")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"runs":    runs,
	})
}
