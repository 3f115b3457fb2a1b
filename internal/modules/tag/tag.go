package tag

import (
	"github.com/gin-gonic/gin"
	"github.com/typograph/core/internal/models"
	"github.com/typograph/core/internal/modules/article"
	"github.com/typograph/core/internal/pkg/pagination"
	"github.com/typograph/core/internal/pkg/response"
	"gorm.io/gorm"
)

// Service is the tag read side; tags themselves are created only by the
// article save pipeline's keyword reconciliation.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// List returns one page of tags ordered by name.
func (s *Service) List(q pagination.Query) ([]models.TagModel, response.Pagination, error) {
	var tags []models.TagModel
	meta, err := pagination.Paginate(s.db.Model(&models.TagModel{}).Order("name ASC"), q, &tags)
	return tags, meta, err
}

type Handler struct {
	svc      *Service
	articles *article.Service
}

func NewHandler(svc *Service, articles *article.Service) *Handler {
	return &Handler{svc: svc, articles: articles}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/tags")
	g.GET("", h.list)
	g.GET("/:name/articles", h.articlesByTag)
}

func (h *Handler) list(c *gin.Context) {
	tags, meta, err := h.svc.List(pagination.FromContext(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, tags, meta)
}

func (h *Handler) articlesByTag(c *gin.Context) {
	articles, err := h.articles.FindByTag(c.Param("name"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, articles)
}
