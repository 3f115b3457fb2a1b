package ping

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/typograph/core/internal/modules/article"
	"github.com/typograph/core/internal/pkg/response"
)

type dispatchDTO struct {
	URLs       []string `json:"urls" binding:"required,min=1"`
	ArticleURL string   `json:"article_url"`
	Sync       bool     `json:"sync"`
}

// Handler exposes ping dispatch and inspection for an article.
type Handler struct {
	svc      *Service
	articles *article.Service
	blogURL  string
}

func NewHandler(svc *Service, articles *article.Service, blogURL string) *Handler {
	return &Handler{svc: svc, articles: articles, blogURL: blogURL}
}

// RegisterRoutes mounts the ping surface under its own prefix; the /articles
// GET tree wildcards on :year, which rules out an /articles/:id sibling.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/pings/:article_id", authMW)
	g.GET("", h.list)
	g.POST("", h.dispatch)
}

func (h *Handler) list(c *gin.Context) {
	pings, err := h.svc.ListByArticle(c.Param("article_id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, pings)
}

func (h *Handler) dispatch(c *gin.Context) {
	var dto dispatchDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	a, err := h.articles.GetByID(c.Param("article_id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if a == nil {
		response.NotFound(c)
		return
	}
	if !a.IsPublished() {
		response.Conflict(c, "article is not published")
		return
	}

	articleURL := dto.ArticleURL
	if articleURL == "" {
		created := a.CreatedAt.UTC()
		articleURL = fmt.Sprintf("%s/articles/%04d/%02d/%02d/%s",
			strings.TrimRight(h.blogURL, "/"),
			created.Year(), created.Month(), created.Day(), a.Permalink)
	}

	if dto.Sync {
		results, err := h.svc.Dispatch(c.Request.Context(), a.ID, articleURL, dto.URLs)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		response.OK(c, results)
		return
	}

	task, err := h.svc.DispatchAsync(c.Request.Context(), a.ID, articleURL, dto.URLs)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"task_id": task.ID})
}
