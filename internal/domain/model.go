package domain

import (
	"time"

	"github.com/simp-lee/procurebase/internal/filter"
)

// BaseModel is the common base struct for all domain models.
// It replaces gorm.Model to avoid the implicit soft delete behavior of DeletedAt.
type BaseModel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListRequest holds the parameters of a list query: paging, free-text search,
// sorting, the decoded filter clauses and any other query parameters.
type ListRequest struct {
	Page    int
	Limit   int
	Search  string
	Sort    string
	Filters []filter.Clause
	// Params holds every other non-empty query parameter, e.g. a parent id.
	Params map[string]string
}

// ListResult is one page of rows plus server-defined aggregates.
type ListResult[T any] struct {
	Items      []T
	TotalCount int // number of pages
	TotalDoc   int64
	// Extra is merged into the top level of the list response.
	Extra map[string]any
}
