package user

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/procurebase/internal/domain"
)

// passwordCost is the bcrypt cost for stored password hashes.
var passwordCost = bcrypt.DefaultCost

// userService implements domain.UserService.
type userService struct {
	repo domain.UserRepository
}

// NewUserService creates a new UserService with the given repository.
func NewUserService(repo domain.UserRepository) domain.UserService {
	return &userService{repo: repo}
}

// CreateUser validates input, builds a User, and persists it via the repository.
// The role defaults to viewer; the password is optional.
func (s *userService) CreateUser(ctx context.Context, in domain.UserInput) (*domain.User, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:  in.Name,
		Email: in.Email,
		Role:  in.Role,
	}
	if in.Password != "" {
		if user.PasswordHash, err = hashPassword(in.Password); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *userService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListUsers returns one page of users.
func (s *userService) ListUsers(ctx context.Context, req domain.ListRequest) (*domain.ListResult[domain.User], error) {
	return s.repo.List(ctx, req)
}

// UpdateUser loads the existing user, applies changes, and persists them.
// An empty password keeps the stored hash.
func (s *userService) UpdateUser(ctx context.Context, id uint, in domain.UserInput) (*domain.User, error) {
	in, err := normalizeInput(in)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = in.Name
	user.Email = in.Email
	user.Role = in.Role
	if in.Password != "" {
		if user.PasswordHash, err = hashPassword(in.Password); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// DeleteUser removes a user by ID.
func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func normalizeInput(in domain.UserInput) (domain.UserInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Role == "" {
		in.Role = domain.RoleViewer
	}

	if err := validateNameEmail(in.Name, in.Email); err != nil {
		return in, err
	}
	if !in.Role.Valid() {
		return in, domain.NewAppError(domain.CodeValidation, "role must be one of admin, buyer, approver, viewer", nil)
	}
	if in.Password != "" && (len(in.Password) < 8 || len(in.Password) > 72) {
		return in, domain.NewAppError(domain.CodeValidation, "password must be 8 to 72 characters", nil)
	}
	return in, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}
	return string(hash), nil
}

// validateNameEmail checks that name and email are non-empty.
func validateNameEmail(name, email string) error {
	if name == "" {
		return domain.NewAppError(domain.CodeValidation, "name is required", nil)
	}
	if utf8.RuneCountInString(name) < 2 {
		return domain.NewAppError(domain.CodeValidation, "name must be at least 2 characters", nil)
	}
	if utf8.RuneCountInString(name) > 100 {
		return domain.NewAppError(domain.CodeValidation, "name must be at most 100 characters", nil)
	}

	if email == "" {
		return domain.NewAppError(domain.CodeValidation, "email is required", nil)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.NewAppError(domain.CodeValidation, "email must be a valid email address", nil)
	}
	return nil
}
