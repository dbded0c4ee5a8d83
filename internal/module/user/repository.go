package user

import (
	"context"

	"gorm.io/gorm"

	"github.com/simp-lee/procurebase/internal/domain"
	"github.com/simp-lee/procurebase/internal/pkg"
)

// List query columns.
var (
	allowedSortFields = []string{"id", "name", "email", "role", "created_at", "updated_at"}
	searchFields      = []string{"name", "email"}
	matchColumns      = map[string]string{"role": "role", "email": "email"}
	filterColumns     = map[string]string{
		"name":       "name",
		"email":      "email",
		"role":       "role",
		"created_at": "created_at",
	}
)

// userRepository implements domain.UserRepository using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository backed by the given GORM database.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

// GetByID retrieves a user by its primary key.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email address.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &user, nil
}

// List returns one page of users matching the search, params and filters.
func (r *userRepository) List(ctx context.Context, req domain.ListRequest) (*domain.ListResult[domain.User], error) {
	return pkg.FindPage[domain.User](func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.User{}).Scopes(
			pkg.Search(req.Search, searchFields),
			pkg.Match(req.Params, matchColumns),
			pkg.ApplyFilters(req.Filters, filterColumns),
		)
	}, req, allowedSortFields)
}

// Update saves changes to an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return pkg.MapDBError(err)
	}
	return nil
}

// Delete removes a user by ID.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.User{}, id)
	if result.Error != nil {
		return pkg.MapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
