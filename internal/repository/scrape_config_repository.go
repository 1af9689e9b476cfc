package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JustinTDCT/VidVault/internal/models"
)

var ErrConfigNotFound = errors.New("auto-scrape config not found")

type ScrapeConfigRepository struct {
	db *sql.DB
}

func NewScrapeConfigRepository(db *sql.DB) *ScrapeConfigRepository {
	return &ScrapeConfigRepository{db: db}
}

const configColumns = `id, enabled, interval_minutes, job_type, start_page, end_page,
	keyword, update_existing, last_run, next_run, created_at, updated_at`

func (r *ScrapeConfigRepository) scan(rows *sql.Rows) (*models.AutoScrapeConfig, error) {
	c := &models.AutoScrapeConfig{}
	err := rows.Scan(&c.ID, &c.Enabled, &c.IntervalMinutes, &c.JobType, &c.StartPage,
		&c.EndPage, &c.Keyword, &c.UpdateExisting, &c.LastRun, &c.NextRun,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ScrapeConfigRepository) List() ([]*models.AutoScrapeConfig, error) {
	rows, err := r.db.Query(`SELECT ` + configColumns + ` FROM scrape_configs ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*models.AutoScrapeConfig
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

func (r *ScrapeConfigRepository) ListEnabled() ([]*models.AutoScrapeConfig, error) {
	rows, err := r.db.Query(`SELECT ` + configColumns + ` FROM scrape_configs WHERE enabled ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []*models.AutoScrapeConfig
	for rows.Next() {
		c, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

func (r *ScrapeConfigRepository) GetByID(id uuid.UUID) (*models.AutoScrapeConfig, error) {
	c := &models.AutoScrapeConfig{}
	query := `SELECT ` + configColumns + ` FROM scrape_configs WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(&c.ID, &c.Enabled, &c.IntervalMinutes, &c.JobType,
		&c.StartPage, &c.EndPage, &c.Keyword, &c.UpdateExisting, &c.LastRun, &c.NextRun,
		&c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrConfigNotFound
	}
	return c, err
}

func (r *ScrapeConfigRepository) Create(c *models.AutoScrapeConfig) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	query := `INSERT INTO scrape_configs (id, enabled, interval_minutes, job_type,
		start_page, end_page, keyword, update_existing, next_run)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at, updated_at`
	err := r.db.QueryRow(query, c.ID, c.Enabled, c.IntervalMinutes, c.JobType,
		c.StartPage, c.EndPage, c.Keyword, c.UpdateExisting, c.NextRun).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert scrape config: %w", err)
	}
	return nil
}

func (r *ScrapeConfigRepository) Update(c *models.AutoScrapeConfig) error {
	query := `UPDATE scrape_configs SET enabled = $1, interval_minutes = $2, job_type = $3,
		start_page = $4, end_page = $5, keyword = $6, update_existing = $7, next_run = $8,
		updated_at = CURRENT_TIMESTAMP WHERE id = $9`
	res, err := r.db.Exec(query, c.Enabled, c.IntervalMinutes, c.JobType, c.StartPage,
		c.EndPage, c.Keyword, c.UpdateExisting, c.NextRun, c.ID)
	if err != nil {
		return fmt.Errorf("update scrape config: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConfigNotFound
	}
	return nil
}

func (r *ScrapeConfigRepository) Delete(id uuid.UUID) error {
	res, err := r.db.Exec(`DELETE FROM scrape_configs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scrape config: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConfigNotFound
	}
	return nil
}

// TouchRun records a fired schedule: last_run now, next_run now+interval.
func (r *ScrapeConfigRepository) TouchRun(id uuid.UUID, lastRun, nextRun time.Time) error {
	_, err := r.db.Exec(`UPDATE scrape_configs SET last_run = $1, next_run = $2,
		updated_at = CURRENT_TIMESTAMP WHERE id = $3`, lastRun, nextRun, id)
	return err
}
