package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/JustinTDCT/VidVault/internal/httputil"
	"github.com/JustinTDCT/VidVault/internal/models"
	"github.com/JustinTDCT/VidVault/internal/repository"
)

type autoConfigRequest struct {
	ID              *uuid.UUID     `json:"id,omitempty"`
	Enabled         bool           `json:"enabled"`
	IntervalMinutes int            `json:"interval"`
	JobType         models.JobType `json:"type"`
	StartPage       int            `json:"start_page"`
	EndPage         int            `json:"end_page"`
	Keyword         string         `json:"keyword,omitempty"`
	UpdateExisting  bool           `json:"update_existing"`
}

func (req *autoConfigRequest) validate() string {
	if !req.JobType.Valid() {
		return "invalid job type"
	}
	if req.IntervalMinutes < 1 {
		return "interval must be at least 1 minute"
	}
	if req.StartPage < 1 || req.EndPage < req.StartPage {
		return "invalid page range"
	}
	return ""
}

type autoConfigResponse struct {
	Success bool                     `json:"success"`
	Config  *models.AutoScrapeConfig `json:"config"`
}

func (s *Server) handleAutoList(w http.ResponseWriter, r *http.Request) {
	configs, err := s.configRepo.List()
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "could not load configs")
		return
	}
	if configs == nil {
		configs = []*models.AutoScrapeConfig{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"configs": configs,
	})
}

func (s *Server) handleAutoCreate(w http.ResponseWriter, r *http.Request) {
	var req autoConfigRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := req.validate(); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	cfg := &models.AutoScrapeConfig{
		Enabled:         req.Enabled,
		IntervalMinutes: req.IntervalMinutes,
		JobType:         req.JobType,
		StartPage:       req.StartPage,
		EndPage:         req.EndPage,
		Keyword:         req.Keyword,
		UpdateExisting:  req.UpdateExisting,
	}
	if cfg.Enabled {
		next := time.Now().Add(time.Duration(cfg.IntervalMinutes) * time.Minute)
		cfg.NextRun = &next
	}

	if err := s.configRepo.Create(cfg); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "could not save config")
		return
	}
	s.scheduler.Arm(cfg)

	httputil.WriteJSON(w, http.StatusCreated, autoConfigResponse{Success: true, Config: cfg})
}

func (s *Server) handleAutoUpdate(w http.ResponseWriter, r *http.Request) {
	var req autoConfigRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == nil {
		httputil.WriteError(w, http.StatusBadRequest, "config id is required")
		return
	}
	if msg := req.validate(); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	// Disarm first so no stale timer survives the update.
	s.scheduler.Disarm(*req.ID)

	cfg := &models.AutoScrapeConfig{
		ID:              *req.ID,
		Enabled:         req.Enabled,
		IntervalMinutes: req.IntervalMinutes,
		JobType:         req.JobType,
		StartPage:       req.StartPage,
		EndPage:         req.EndPage,
		Keyword:         req.Keyword,
		UpdateExisting:  req.UpdateExisting,
	}
	if cfg.Enabled {
		next := time.Now().Add(time.Duration(cfg.IntervalMinutes) * time.Minute)
		cfg.NextRun = &next
	}

	err := s.configRepo.Update(cfg)
	if errors.Is(err, repository.ErrConfigNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "config not found")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "could not save config")
		return
	}
	s.scheduler.Arm(cfg)

	httputil.WriteJSON(w, http.StatusOK, autoConfigResponse{Success: true, Config: cfg})
}

func (s *Server) handleAutoDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("id"))
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid config id")
		return
	}

	s.scheduler.Disarm(id)

	err = s.configRepo.Delete(id)
	if errors.Is(err, repository.ErrConfigNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "config not found")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "could not delete config")
		return
	}
	httputil.WriteOK(w, "Config deleted")
}
