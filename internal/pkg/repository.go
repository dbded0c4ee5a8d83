package pkg

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/simp-lee/procurebase/internal/domain"
)

// FindPage counts the rows matched by query and loads the requested page of
// them, sorted by req.Sort when the field is sortable. query must return a
// fresh statement on every call. Errors are mapped with MapDBError.
func FindPage[T any](query func() *gorm.DB, req domain.ListRequest, sortable []string) (*domain.ListResult[T], error) {
	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, MapDBError(err)
	}

	var items []T
	if err := query().Scopes(
		Paginate(req),
		Sort(req, sortable),
	).Find(&items).Error; err != nil {
		return nil, MapDBError(err)
	}

	return NewListResult(items, total, req), nil
}

// MapDBError converts GORM errors to domain errors. Errors that already are
// domain errors pass through unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. This is needed because not all GORM dialectors translate
// driver-level errors to gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
