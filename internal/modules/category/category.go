package category

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/typograph/core/internal/models"
	"github.com/typograph/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Service handles category management.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// List returns all categories ordered by name.
func (s *Service) List() ([]models.CategoryModel, error) {
	var categories []models.CategoryModel
	return categories, s.db.Order("name ASC").Find(&categories).Error
}

// Create inserts a new category.
func (s *Service) Create(name, slug string) (*models.CategoryModel, error) {
	cat := models.CategoryModel{Name: name, Slug: slug}
	return &cat, s.db.Create(&cat).Error
}

// GetBySlug fetches a category with its published articles preloaded.
func (s *Service) GetBySlug(slug string) (*models.CategoryModel, error) {
	var cat models.CategoryModel
	err := s.db.
		Preload("Articles", func(db *gorm.DB) *gorm.DB {
			return db.Where("published = ?", true).Order("created_at DESC")
		}).
		Where("slug = ?", slug).
		First(&cat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cat, nil
}

type createDTO struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/categories")
	g.GET("", h.list)
	g.GET("/:slug", h.get)
	g.POST("", authMW, h.create)
}

func (h *Handler) list(c *gin.Context) {
	categories, err := h.svc.List()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, categories)
}

func (h *Handler) get(c *gin.Context) {
	cat, err := h.svc.GetBySlug(c.Param("slug"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if cat == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, cat)
}

func (h *Handler) create(c *gin.Context) {
	var dto createDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cat, err := h.svc.Create(dto.Name, dto.Slug)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, cat)
}
