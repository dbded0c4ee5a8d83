package domain

import "context"

// Role is a back-office user role.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleBuyer    Role = "buyer"
	RoleApprover Role = "approver"
	RoleViewer   Role = "viewer"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBuyer, RoleApprover, RoleViewer:
		return true
	}
	return false
}

// User represents a back-office user.
type User struct {
	BaseModel
	Name         string `gorm:"size:100;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role         Role   `gorm:"size:20;not null;default:viewer;index" json:"role"`
	PasswordHash string `gorm:"size:255" json:"-"`
}

// UserInput carries the writable fields of a user.
type UserInput struct {
	Name     string
	Email    string
	Role     Role
	Password string
}

// UserRepository defines the data access interface for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, req ListRequest) (*ListResult[User], error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uint) error
}

// UserService defines the business logic interface for users.
type UserService interface {
	CreateUser(ctx context.Context, in UserInput) (*User, error)
	GetUser(ctx context.Context, id uint) (*User, error)
	ListUsers(ctx context.Context, req ListRequest) (*ListResult[User], error)
	UpdateUser(ctx context.Context, id uint, in UserInput) (*User, error)
	DeleteUser(ctx context.Context, id uint) error
}
