package repository

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/JustinTDCT/VidVault/internal/models"
)

// Catalog bundles the three catalog repositories behind the store surface
// the ingestion engine consumes (scraper.Store).
type Catalog struct {
	videos     *VideoRepository
	categories *CategoryRepository
	catModels  *ModelRepository
}

func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{
		videos:     NewVideoRepository(db),
		categories: NewCategoryRepository(db),
		catModels:  NewModelRepository(db),
	}
}

func (c *Catalog) VideoByTitle(title string) (*models.Video, error) {
	return c.videos.GetByTitle(title)
}

func (c *Catalog) VideoBySlug(slug string) (*models.Video, error) {
	return c.videos.GetBySlug(slug)
}

func (c *Catalog) CreateVideo(v *models.Video) error {
	return c.videos.Create(v)
}

func (c *Catalog) UpdateVideo(v *models.Video) error {
	return c.videos.Update(v)
}

func (c *Catalog) ReplaceVideoLinks(videoID uuid.UUID, categoryIDs, modelIDs []uuid.UUID) error {
	if err := c.videos.ReplaceCategoryLinks(videoID, categoryIDs); err != nil {
		return err
	}
	return c.videos.ReplaceModelLinks(videoID, modelIDs)
}

func (c *Catalog) CategoryByName(name string) (*models.Category, error) {
	return c.categories.GetByName(name)
}

func (c *Catalog) CreateCategory(cat *models.Category) error {
	return c.categories.Create(cat)
}

func (c *Catalog) UpdateCategory(cat *models.Category) error {
	return c.categories.Update(cat)
}

func (c *Catalog) ModelByName(name string) (*models.Model, error) {
	return c.catModels.GetByName(name)
}

func (c *Catalog) CreateModel(m *models.Model) error {
	return c.catModels.Create(m)
}

func (c *Catalog) UpdateModel(m *models.Model) error {
	return c.catModels.Update(m)
}
