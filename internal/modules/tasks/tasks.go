package tasks

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/typograph/core/internal/pkg/pagination"
	"github.com/typograph/core/internal/pkg/response"
	"github.com/typograph/core/internal/pkg/taskqueue"
)

// Handler exposes background-task inspection and cleanup. Producers hand out
// task IDs; this is where callers poll them.
type Handler struct {
	queue *taskqueue.Service
}

func NewHandler(queue *taskqueue.Service) *Handler {
	return &Handler{queue: queue}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/tasks", authMW)
	g.GET("", h.list)
	g.GET("/:id", h.show)
	g.DELETE("", h.cleanup)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)

	var taskType *string
	if v := c.Query("type"); v != "" {
		taskType = &v
	}
	var status *taskqueue.TaskStatus
	if v := c.Query("status"); v != "" {
		s := taskqueue.TaskStatus(v)
		status = &s
	}

	tasks, total, err := h.queue.List(c.Request.Context(), q.Page, q.Size, taskType, status)
	if err != nil {
		response.InternalError(c, err)
		return
	}

	totalPage := int((total + int64(q.Size) - 1) / int64(q.Size))
	response.Paged(c, tasks, response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPage,
		Size:        q.Size,
		HasNextPage: q.Page < totalPage,
	})
}

func (h *Handler) show(c *gin.Context) {
	task, err := h.queue.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if task == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, task)
}

// cleanup drops completed and failed tasks, optionally only those created
// before the given unix-millisecond cutoff.
func (h *Handler) cleanup(c *gin.Context) {
	var beforeMS int64
	if v := c.Query("before"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid before")
			return
		}
		beforeMS = parsed
	}

	if err := h.queue.DeleteCompleted(c.Request.Context(), beforeMS); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}
