package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/JustinTDCT/VidVault/internal/models"
)

type CollectionLogRepository struct {
	db *sql.DB
}

func NewCollectionLogRepository(db *sql.DB) *CollectionLogRepository {
	return &CollectionLogRepository{db: db}
}

func (r *CollectionLogRepository) Create(l *models.CollectionLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	query := `INSERT INTO collection_logs (id, job_type, keyword, total_pages, total,
		processed, created, updated, errors, started_at, finished_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(query, l.ID, l.JobType, l.Keyword, l.TotalPages, l.Total,
		l.Processed, l.Created, l.Updated, l.Errors, l.StartedAt, l.FinishedAt, l.Status)
	if err != nil {
		return fmt.Errorf("insert collection log: %w", err)
	}
	return nil
}

func (r *CollectionLogRepository) ListRecent(limit int) ([]*models.CollectionLog, error) {
	query := `SELECT id, job_type, keyword, total_pages, total, processed, created, updated,
		errors, started_at, finished_at, status
		FROM collection_logs ORDER BY started_at DESC LIMIT $1`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*models.CollectionLog
	for rows.Next() {
		l := &models.CollectionLog{}
		if err := rows.Scan(&l.ID, &l.JobType, &l.Keyword, &l.TotalPages, &l.Total,
			&l.Processed, &l.Created, &l.Updated, &l.Errors, &l.StartedAt,
			&l.FinishedAt, &l.Status); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
