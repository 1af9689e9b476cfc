package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/JustinTDCT/VidVault/internal/models"
)

type VideoRepository struct {
	db *sql.DB
}

func NewVideoRepository(db *sql.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

const videoColumns = `id, title, slug, description, thumbnail, duration, video_url,
	category, model, tags, views, likes, featured, created_at, updated_at`

func scanVideo(row *sql.Row) (*models.Video, error) {
	v := &models.Video{}
	err := row.Scan(&v.ID, &v.Title, &v.Slug, &v.Description, &v.Thumbnail, &v.Duration,
		&v.VideoURL, &v.Category, &v.Model, &v.Tags, &v.Views, &v.Likes, &v.Featured,
		&v.CreatedAt, &v.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// GetByTitle matches the exact stored title. Returns (nil, nil) when absent.
func (r *VideoRepository) GetByTitle(title string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE title = $1 LIMIT 1`
	return scanVideo(r.db.QueryRow(query, title))
}

// GetBySlug matches the exact stored slug (case-sensitive). Returns (nil, nil) when absent.
func (r *VideoRepository) GetBySlug(slug string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE slug = $1 LIMIT 1`
	return scanVideo(r.db.QueryRow(query, slug))
}

func (r *VideoRepository) Create(v *models.Video) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	query := `INSERT INTO videos (id, title, slug, description, thumbnail, duration, video_url,
		category, model, tags, views, likes, featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(query, v.ID, v.Title, v.Slug, v.Description, v.Thumbnail, v.Duration,
		v.VideoURL, v.Category, v.Model, v.Tags, v.Views, v.Likes, v.Featured).
		Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (r *VideoRepository) Update(v *models.Video) error {
	query := `UPDATE videos SET title = $1, slug = $2, description = $3, thumbnail = $4,
		duration = $5, video_url = $6, category = $7, model = $8, tags = $9,
		views = $10, likes = $11, featured = $12, updated_at = CURRENT_TIMESTAMP
		WHERE id = $13`
	_, err := r.db.Exec(query, v.Title, v.Slug, v.Description, v.Thumbnail, v.Duration,
		v.VideoURL, v.Category, v.Model, v.Tags, v.Views, v.Likes, v.Featured, v.ID)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	return nil
}

// ReplaceCategoryLinks rewrites the video_categories rows for one video.
func (r *VideoRepository) ReplaceCategoryLinks(videoID uuid.UUID, categoryIDs []uuid.UUID) error {
	return r.replaceLinks("video_categories", "category_id", videoID, categoryIDs)
}

// ReplaceModelLinks rewrites the video_models rows for one video.
func (r *VideoRepository) ReplaceModelLinks(videoID uuid.UUID, modelIDs []uuid.UUID) error {
	return r.replaceLinks("video_models", "model_id", videoID, modelIDs)
}

func (r *VideoRepository) replaceLinks(table, column string, videoID uuid.UUID, ids []uuid.UUID) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE video_id = $1`, table), videoID); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	insert := fmt.Sprintf(`INSERT INTO %s (video_id, %s) VALUES ($1, $2) ON CONFLICT DO NOTHING`, table, column)
	for _, id := range ids {
		if _, err := tx.Exec(insert, videoID, id); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return tx.Commit()
}
