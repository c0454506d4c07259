package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/issue-tracker/internal/constants"
)

// PaginationParams is the row window requested through ?page=&limit=.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// Pager is what list templates need to draw previous/next links.
type Pager struct {
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// GetPaginationParams reads page and limit from the query string. Values
// that do not parse or fall out of range are replaced by the defaults.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}

	limit := queryInt(c, "limit", constants.DefaultPageSize)
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// TotalPages returns the number of pages needed for total rows
func (p PaginationParams) TotalPages(total int64) int {
	if p.Limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// Pager combines the requested window with the row count of the query.
func (p PaginationParams) Pager(total int64) Pager {
	return Pager{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: p.TotalPages(total),
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return n
}
