package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultLimit  = 20
	MaxLimit      = 100
	DefaultOffset = 0
)

// Params is a parsed limit/offset pair
type Params struct {
	Limit  int
	Offset int
}

// Meta describes a page of results
type Meta struct {
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// ParseParams reads limit and offset from the query string. Missing or
// malformed values take the defaults and limit is capped at MaxLimit.
func ParseParams(c *gin.Context) Params {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, err := strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		offset = DefaultOffset
	}

	return Params{Limit: limit, Offset: offset}
}

// BuildMeta describes the page starting at offset
func BuildMeta(limit, offset int, total int64) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}

	return Meta{
		Limit:      limit,
		Offset:     offset,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    HasMore(offset, limit, total),
	}
}

// HasMore reports whether rows remain after this page
func HasMore(offset, limit int, total int64) bool {
	return int64(offset+limit) < total
}
