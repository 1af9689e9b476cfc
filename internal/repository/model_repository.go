package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/JustinTDCT/VidVault/internal/models"
)

type ModelRepository struct {
	db *sql.DB
}

func NewModelRepository(db *sql.DB) *ModelRepository {
	return &ModelRepository{db: db}
}

// GetByName matches the exact stored name. Returns (nil, nil) when absent.
func (r *ModelRepository) GetByName(name string) (*models.Model, error) {
	m := &models.Model{}
	query := `SELECT id, name, slug, bio, total_views, video_count, created_at, updated_at
		FROM models WHERE name = $1`
	err := r.db.QueryRow(query, name).Scan(&m.ID, &m.Name, &m.Slug, &m.Bio,
		&m.TotalViews, &m.VideoCount, &m.CreatedAt, &m.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *ModelRepository) Create(m *models.Model) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	query := `INSERT INTO models (id, name, slug, bio, total_views, video_count)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`
	err := r.db.QueryRow(query, m.ID, m.Name, m.Slug, m.Bio, m.TotalViews, m.VideoCount).
		Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert model: %w", err)
	}
	return nil
}

func (r *ModelRepository) Update(m *models.Model) error {
	query := `UPDATE models SET name = $1, slug = $2, bio = $3, total_views = $4,
		video_count = $5, updated_at = CURRENT_TIMESTAMP WHERE id = $6`
	_, err := r.db.Exec(query, m.Name, m.Slug, m.Bio, m.TotalViews, m.VideoCount, m.ID)
	if err != nil {
		return fmt.Errorf("update model: %w", err)
	}
	return nil
}
