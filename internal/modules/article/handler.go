package article

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/typograph/core/internal/models"
	"github.com/typograph/core/internal/modules/textfilter"
	"github.com/typograph/core/internal/pkg/pagination"
	"github.com/typograph/core/internal/pkg/response"
)

// Handler exposes the article read and write surface.
type Handler struct {
	svc      *Service
	pageSize int
}

func NewHandler(svc *Service, pageSize int) *Handler {
	return &Handler{svc: svc, pageSize: pageSize}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	rg.GET("/articles", h.index)
	rg.GET("/articles/:year/:month/:day/:permalink", h.showByPermalink)
	rg.GET("/search", h.search)

	g := rg.Group("/articles", authMW)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.PATCH("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

// index lists published articles, optionally scoped to a year/month/day
// window, sliced by the pagination window calculator.
func (h *Handler) index(c *gin.Context) {
	var (
		articles []models.ArticleModel
		err      error
	)

	if yearStr := c.Query("year"); yearStr != "" {
		year, convErr := strconv.Atoi(yearStr)
		if convErr != nil {
			response.BadRequest(c, "invalid year")
			return
		}
		month, ok := optionalIntQuery(c, "month")
		if !ok {
			response.BadRequest(c, "invalid month")
			return
		}
		day, ok := optionalIntQuery(c, "day")
		if !ok {
			response.BadRequest(c, "invalid day")
			return
		}
		articles, err = h.svc.FindAllByDate(year, month, day)
	} else {
		articles, err = h.svc.List()
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}

	h.renderPage(c, articles)
}

func (h *Handler) search(c *gin.Context) {
	articles, err := h.svc.Search(c.Query("q"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	h.renderPage(c, articles)
}

// renderPage slices the full ordered list down to the requested page.
func (h *Handler) renderPage(c *gin.Context, articles []models.ArticleModel) {
	total := len(articles)
	if total == 0 {
		response.OK(c, []models.ArticleModel{})
		return
	}

	page := pagination.FromContext(c).Page
	start, stop := pagination.Window(total, h.pageSize, page)
	if start > stop {
		response.OK(c, []models.ArticleModel{})
		return
	}
	response.OK(c, articles[start:stop+1])
}

func (h *Handler) showByPermalink(c *gin.Context) {
	year, errY := strconv.Atoi(c.Param("year"))
	month, errM := strconv.Atoi(c.Param("month"))
	day, errD := strconv.Atoi(c.Param("day"))
	if errY != nil || errM != nil || errD != nil {
		response.BadRequest(c, "invalid date")
		return
	}

	a, err := h.svc.FindByPermalink(year, month, day, c.Param("permalink"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if a == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, gin.H{"article": a, "full_html": a.FullHTML()})
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	a, err := h.svc.Create(&dto)
	if err != nil {
		h.writeSaveError(c, err)
		return
	}
	response.Created(c, a)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	a, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		h.writeSaveError(c, err)
		return
	}
	if a == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, a)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Param("id")); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) writeSaveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTitleRequired) || errors.Is(err, ErrDuplicateGUID) ||
		errors.Is(err, textfilter.ErrUnknownFilter):
		response.UnprocessableEntity(c, []string{err.Error()})
	default:
		response.InternalError(c, err)
	}
}

func optionalIntQuery(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &v, true
}
