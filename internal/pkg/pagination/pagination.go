package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/typograph/core/internal/pkg/response"
	"gorm.io/gorm"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
)

// Query holds parsed pagination parameters.
type Query struct {
	Page int
	Size int
}

// FromContext extracts and validates pagination params from the request.
func FromContext(c *gin.Context) Query {
	page := parseIntOr(c.DefaultQuery("page", "1"), DefaultPage)
	size := parseIntOr(c.DefaultQuery("size", "10"), DefaultSize)

	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}

	return Query{Page: page, Size: size}
}

// Window converts (total, size, page) into the inclusive [start, stop] slice
// range of the requested page. An invalid page is treated as page 1. The stop
// is clamped to total-1 so the last page takes the remainder; a page beyond
// the data yields start > stop, which callers treat as an empty page rather
// than an error. Callers with total == 0 should short-circuit before slicing;
// Window still degrades to an empty range there.
func Window(total, size, page int) (start, stop int) {
	if size < 1 {
		size = DefaultSize
	}
	if page < 1 {
		page = 1
	}
	start = (page - 1) * size
	stop = start + size - 1
	if stop > total-1 {
		stop = total - 1
	}
	return start, stop
}

// Paginate applies limit/offset to a GORM query and returns the pagination metadata.
func Paginate[T any](db *gorm.DB, q Query, dest *[]T) (response.Pagination, error) {
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return response.Pagination{}, err
	}

	offset := (q.Page - 1) * q.Size
	if err := db.Offset(offset).Limit(q.Size).Find(dest).Error; err != nil {
		return response.Pagination{}, err
	}

	totalPage := int((total + int64(q.Size) - 1) / int64(q.Size))

	return response.Pagination{
		Total:       total,
		CurrentPage: q.Page,
		TotalPage:   totalPage,
		Size:        q.Size,
		HasNextPage: q.Page < totalPage,
	}, nil
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
