package article

import (
	"errors"
	"strings"

	"github.com/typograph/core/internal/config"
	"github.com/typograph/core/internal/models"
	"github.com/typograph/core/internal/modules/textfilter"
	"github.com/typograph/core/internal/pkg/timewindow"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrTitleRequired rejects a save with a blank title.
	ErrTitleRequired = errors.New("title is required")
	// ErrDuplicateGUID rejects a save whose fingerprint collides with
	// another article.
	ErrDuplicateGUID = errors.New("guid already exists")
)

// Service handles article business logic.
type Service struct {
	db      *gorm.DB
	cfg     config.BlogConfig
	filters textfilter.Engine
}

func NewService(db *gorm.DB, cfg config.BlogConfig) *Service {
	return &Service{db: db, cfg: cfg}
}

// Create saves a new article. Defaulting, rendering and tag reconciliation
// run inside one transaction; a validation failure persists nothing.
func (s *Service) Create(dto *CreateArticleDTO) (*models.ArticleModel, error) {
	a := &models.ArticleModel{
		Title:      dto.Title,
		Body:       dto.Body,
		Extended:   dto.Extended,
		TextFilter: dto.TextFilter,
		Permalink:  dto.Permalink,
		Published:  dto.Published,
		Keywords:   dto.Keywords,
		Author:     dto.Author,
		UserID:     dto.UserID,
	}
	if err := s.save(a, dto.CategoryIDs); err != nil {
		return nil, err
	}
	return a, nil
}

// Update patches an article by ID and re-runs the save pipeline. Returns
// (nil, nil) when the article does not exist.
func (s *Service) Update(id string, dto *UpdateArticleDTO) (*models.ArticleModel, error) {
	a, err := s.GetByID(id)
	if err != nil || a == nil {
		return nil, err
	}

	if dto.Title != nil {
		a.Title = *dto.Title
	}
	if dto.Body != nil {
		a.Body = *dto.Body
	}
	if dto.Extended != nil {
		a.Extended = *dto.Extended
	}
	if dto.TextFilter != nil {
		a.TextFilter = *dto.TextFilter
	}
	if dto.Published != nil {
		a.Published = dto.Published
	}
	if dto.Keywords != nil {
		a.Keywords = *dto.Keywords
	}
	if dto.Author != nil {
		a.Author = *dto.Author
	}

	if err := s.save(a, dto.CategoryIDs); err != nil {
		return nil, err
	}
	return a, nil
}

// GetByID fetches a single article by ID.
func (s *Service) GetByID(id string) (*models.ArticleModel, error) {
	var a models.ArticleModel
	if err := s.db.Preload("Tags").Preload("Categories").First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// FindAllByDate returns published articles created inside the window of the
// partial date, newest first, with categories and feedback eagerly loaded.
func (s *Service) FindAllByDate(year int, month, day *int) ([]models.ArticleModel, error) {
	from, to := timewindow.Resolve(year, month, day)

	var articles []models.ArticleModel
	err := s.db.
		Preload("Categories").
		Preload("Trackbacks", feedbackOrder).
		Preload("Comments", feedbackOrder).
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("published = ?", true).
		Order("created_at DESC").
		Find(&articles).Error
	return articles, err
}

// CountByDate counts published articles created inside the window.
func (s *Service) CountByDate(year int, month, day *int) (int64, error) {
	from, to := timewindow.Resolve(year, month, day)

	var count int64
	err := s.db.Model(&models.ArticleModel{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("published = ?", true).
		Count(&count).Error
	return count, err
}

// FindByPermalink returns the first published article in the day's window
// matching the exact permalink, or (nil, nil).
func (s *Service) FindByPermalink(year, month, day int, permalink string) (*models.ArticleModel, error) {
	from, to := timewindow.Resolve(year, &month, &day)

	var a models.ArticleModel
	err := s.db.
		Preload("Categories").
		Preload("Trackbacks", feedbackOrder).
		Preload("Comments", feedbackOrder).
		Where("permalink = ?", permalink).
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("published = ?", true).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// FindByTag returns published articles carrying the named tag, newest first.
func (s *Service) FindByTag(name string) ([]models.ArticleModel, error) {
	var articles []models.ArticleModel
	err := s.db.
		Joins("JOIN article_tags ON article_tags.article_id = articles.id").
		Joins("JOIN tags ON tags.id = article_tags.tag_id").
		Where("tags.name = ?", name).
		Where("articles.published = ?", true).
		Order("articles.created_at DESC").
		Find(&articles).Error
	return articles, err
}

// List returns all published articles newest first; the presentation layer
// slices it with the pagination window.
func (s *Service) List() ([]models.ArticleModel, error) {
	var articles []models.ArticleModel
	err := s.db.
		Preload("Categories").
		Where("published = ?", true).
		Order("created_at DESC").
		Find(&articles).Error
	return articles, err
}

// Search runs a conjunctive tokenized full-text query over published
// articles. A blank query returns an empty set without touching storage;
// every token must match title, body or extended, case-insensitively.
func (s *Service) Search(query string) ([]models.ArticleModel, error) {
	if strings.TrimSpace(query) == "" {
		return []models.ArticleModel{}, nil
	}

	tx := s.db.Where("published = ?", true)
	for _, token := range strings.Fields(strings.ToLower(query)) {
		like := "%" + token + "%"
		tx = tx.Where("(LOWER(title) LIKE ? OR LOWER(body) LIKE ? OR LOWER(extended) LIKE ?)", like, like, like)
	}

	var articles []models.ArticleModel
	err := tx.Order("created_at DESC").Find(&articles).Error
	return articles, err
}

// Delete removes an article along with its comments, trackbacks and pings.
// Owned resources are detached, not deleted.
func (s *Service) Delete(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var a models.ArticleModel
		if err := tx.First(&a, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		if err := tx.Where("article_id = ?", id).Delete(&models.CommentModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.TrackbackModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).Delete(&models.PingModel{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&a).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&a).Association("Categories").Clear(); err != nil {
			return err
		}
		if err := tx.Model(&models.ResourceModel{}).
			Where("article_id = ?", id).
			Update("article_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&a).Error
	})
}

// save runs the identity/defaulting pipeline and persists the article in one
// atomic unit.
func (s *Service) save(a *models.ArticleModel, categoryIDs []string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		version, err := s.applyDefaults(tx, a)
		if err != nil {
			return err
		}
		if err := s.render(a); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Save(a).Error; err != nil {
			return err
		}
		if err := s.applyAfterPersist(tx, a, version); err != nil {
			return err
		}

		if categoryIDs != nil {
			var categories []models.CategoryModel
			if err := tx.Find(&categories, "id IN ?", categoryIDs).Error; err != nil {
				return err
			}
			if err := tx.Model(a).Association("Categories").Replace(&categories); err != nil {
				return err
			}
		}
		return nil
	})
}

// render applies the article's text filter to both raw halves. A filter
// failure aborts the save.
func (s *Service) render(a *models.ArticleModel) error {
	bodyHTML, err := s.filters.Render(a.Body, a.TextFilter)
	if err != nil {
		return err
	}
	extendedHTML, err := s.filters.Render(a.Extended, a.TextFilter)
	if err != nil {
		return err
	}
	a.BodyHTML = bodyHTML
	a.ExtendedHTML = extendedHTML
	return nil
}

func feedbackOrder(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}
