package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/JustinTDCT/VidVault/internal/models"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetByName matches the exact stored name. Returns (nil, nil) when absent.
func (r *CategoryRepository) GetByName(name string) (*models.Category, error) {
	c := &models.Category{}
	query := `SELECT id, name, slug, description, video_count, created_at, updated_at
		FROM categories WHERE name = $1`
	err := r.db.QueryRow(query, name).Scan(&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.VideoCount, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CategoryRepository) Create(c *models.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	query := `INSERT INTO categories (id, name, slug, description, video_count)
		VALUES ($1, $2, $3, $4, $5) RETURNING created_at, updated_at`
	err := r.db.QueryRow(query, c.ID, c.Name, c.Slug, c.Description, c.VideoCount).
		Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Update(c *models.Category) error {
	query := `UPDATE categories SET name = $1, slug = $2, description = $3,
		video_count = $4, updated_at = CURRENT_TIMESTAMP WHERE id = $5`
	_, err := r.db.Exec(query, c.Name, c.Slug, c.Description, c.VideoCount, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}
