package pkg

import (
	"maps"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/simp-lee/procurebase/internal/domain"
	"github.com/simp-lee/procurebase/internal/filter"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
	defaultSort  = "id:desc"
)

// reservedParams lists the list-contract query parameters; everything else
// is passed through in ListRequest.Params.
var reservedParams = map[string]bool{
	"page":    true,
	"limit":   true,
	"search":  true,
	"sort":    true,
	"filters": true,
}

// validFieldName matches only alphanumeric characters and underscores.
var validFieldName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ParseListRequest extracts the list query from the request. Out-of-range
// page and limit values are clamped; an undecodable filters parameter is an
// invalid-query error.
func ParseListRequest(c *gin.Context) (domain.ListRequest, error) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if page < 1 {
		page = defaultPage
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	clauses, err := filter.Parse(c.Query("filters"))
	if err != nil {
		return domain.ListRequest{}, domain.InvalidQuery("filters", err)
	}

	params := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if reservedParams[key] {
			continue
		}
		if len(values) > 0 && values[0] != "" {
			params[key] = values[0]
		}
	}

	return domain.ListRequest{
		Page:    page,
		Limit:   limit,
		Search:  strings.TrimSpace(c.Query("search")),
		Sort:    c.DefaultQuery("sort", defaultSort),
		Filters: clauses,
		Params:  params,
	}, nil
}

// Paginate returns a GORM scope that applies LIMIT and OFFSET based on the list request.
func Paginate(req domain.ListRequest) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		offset := (req.Page - 1) * req.Limit
		return db.Offset(offset).Limit(req.Limit)
	}
}

// Sort returns a GORM scope that applies ORDER BY based on the list request.
// Only field names present in the allowed list are accepted; others are silently ignored.
// Field names are validated against a strict pattern to prevent SQL injection.
func Sort(req domain.ListRequest, allowed []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		field, direction, ok := strings.Cut(req.Sort, ":")
		if !ok {
			return db
		}

		field = strings.TrimSpace(field)
		direction = strings.TrimSpace(strings.ToLower(direction))

		if direction != "asc" && direction != "desc" {
			return db
		}
		if !validFieldName.MatchString(field) || !slices.Contains(allowed, field) {
			return db
		}

		return db.Order(field + " " + direction)
	}
}

// likeClause escapes with a backslash; SQLite and PostgreSQL both accept it.
const likeClause = ` LIKE ? ESCAPE '\'`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s literally as a substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// UTC returns t converted to UTC, or nil when t is nil. Timestamps are stored
// in UTC so that date filters, which bind UTC bounds, compare like with like.
func UTC(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Search returns a GORM scope matching term as a substring of any of the
// given columns. An empty term adds no condition.
func Search(term string, columns []string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term == "" {
			return db
		}

		conds := make([]string, 0, len(columns))
		args := make([]any, 0, len(columns))
		for _, col := range columns {
			if !validFieldName.MatchString(col) {
				continue
			}
			conds = append(conds, col+likeClause)
			args = append(args, containsPattern(term))
		}
		if len(conds) == 0 {
			return db
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

// Match returns a GORM scope that applies exact-match conditions for the
// request params named in columns (param name → column). A param ending in
// "__like" produces a LIKE '%value%' condition on the column of its base
// name. Unknown params are ignored.
func Match(params map[string]string, columns map[string]string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, key := range slices.Sorted(maps.Keys(params)) {
			value := params[key]
			name, like := strings.CutSuffix(key, "__like")

			col, ok := columns[name]
			if !ok || !validFieldName.MatchString(col) {
				continue
			}
			if like {
				db = db.Where(col+likeClause, containsPattern(value))
			} else {
				db = db.Where(col+" = ?", value)
			}
		}
		return db
	}
}

// ApplyFilters returns a GORM scope translating decoded filter clauses into
// WHERE conditions. columns maps a clause's filterBy to its column; clauses
// for other fields are ignored.
//
//	rangeNumeric  col BETWEEN lo AND hi
//	rangeDate     col >= from, col < to (either side optional)
//	checkbox      col IN (values), nothing when no value is selected
//	inputText     col LIKE %text%, nothing when empty
func ApplyFilters(clauses []filter.Clause, columns map[string]string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, c := range clauses {
			col, ok := columns[c.FilterBy]
			if !ok || !validFieldName.MatchString(col) {
				continue
			}

			switch c.ControlType {
			case filter.TypeRangeNumeric:
				db = db.Where(col+" BETWEEN ? AND ?", c.Range[0], c.Range[1])
			case filter.TypeRangeDate:
				if !c.After.IsZero() {
					db = db.Where(col+" >= ?", c.After.UTC())
				}
				if !c.Before.IsZero() {
					db = db.Where(col+" < ?", c.Before.UTC())
				}
			case filter.TypeCheckbox:
				if len(c.Values) > 0 {
					db = db.Where(col+" IN ?", c.Values)
				}
			case filter.TypeInputText:
				if c.Text != "" {
					db = db.Where(col+likeClause, containsPattern(c.Text))
				}
			}
		}
		return db
	}
}

// NewListResult creates a ListResult with the page count computed from total.
func NewListResult[T any](items []T, total int64, req domain.ListRequest) *domain.ListResult[T] {
	totalCount := 0
	if req.Limit > 0 {
		totalCount = int(math.Ceil(float64(total) / float64(req.Limit)))
	}

	if items == nil {
		items = []T{}
	}

	return &domain.ListResult[T]{
		Items:      items,
		TotalCount: totalCount,
		TotalDoc:   total,
	}
}
