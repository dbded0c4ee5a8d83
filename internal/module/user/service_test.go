package user

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/procurebase/internal/domain"
	"github.com/simp-lee/procurebase/internal/pkg"
)

func init() {
	passwordCost = bcrypt.MinCost
}

// --- mock repository ---

type mockUserRepo struct {
	users  map[uint]*domain.User
	nextID uint
	// hooks for error injection
	createErr error
	updateErr error
	deleteErr error
}

func newMockRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uint]*domain.User), nextID: 1}
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) List(_ context.Context, req domain.ListRequest) (*domain.ListResult[domain.User], error) {
	items := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		items = append(items, *u)
	}
	return pkg.NewListResult(items, int64(len(items)), req), nil
}

func (m *mockUserRepo) Update(_ context.Context, user *domain.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id uint) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// --- tests ---

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name      string
		in        domain.UserInput
		createErr error
		wantErr   bool
		errCode   domain.ErrorCode
	}{
		{"success", domain.UserInput{Name: "Alice", Email: "alice@example.com"}, nil, false, 0},
		{"with role", domain.UserInput{Name: "Alice", Email: "alice@example.com", Role: domain.RoleBuyer}, nil, false, 0},
		{"empty name", domain.UserInput{Name: "", Email: "a@b.com"}, nil, true, domain.CodeValidation},
		{"whitespace name", domain.UserInput{Name: "   ", Email: "a@b.com"}, nil, true, domain.CodeValidation},
		{"short name", domain.UserInput{Name: "A", Email: "a@b.com"}, nil, true, domain.CodeValidation},
		{"empty email", domain.UserInput{Name: "Alice", Email: ""}, nil, true, domain.CodeValidation},
		{"invalid email format", domain.UserInput{Name: "Alice", Email: "not-an-email"}, nil, true, domain.CodeValidation},
		{"unknown role", domain.UserInput{Name: "Alice", Email: "a@b.com", Role: "owner"}, nil, true, domain.CodeValidation},
		{"short password", domain.UserInput{Name: "Alice", Email: "a@b.com", Password: "short"}, nil, true, domain.CodeValidation},
		{"repo error", domain.UserInput{Name: "Alice", Email: "alice@example.com"}, errors.New("db error"), true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo()
			repo.createErr = tt.createErr
			svc := NewUserService(repo)

			user, err := svc.CreateUser(context.Background(), tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errCode != 0 {
					var appErr *domain.AppError
					if !errors.As(err, &appErr) || appErr.Code != tt.errCode {
						t.Errorf("expected error code %d, got %v", tt.errCode, err)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.ID == 0 {
				t.Error("expected user ID to be set")
			}
			wantRole := tt.in.Role
			if wantRole == "" {
				wantRole = domain.RoleViewer
			}
			if user.Role != wantRole {
				t.Errorf("role = %q; want %q", user.Role, wantRole)
			}
		})
	}
}

func TestCreateUser_HashesPassword(t *testing.T) {
	svc := NewUserService(newMockRepo())

	user, err := svc.CreateUser(context.Background(), domain.UserInput{
		Name: "Alice", Email: "alice@example.com", Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.PasswordHash == "" || user.PasswordHash == "correct horse" {
		t.Fatalf("PasswordHash = %q; want a bcrypt hash", user.PasswordHash)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("correct horse")); err != nil {
		t.Errorf("hash does not match password: %v", err)
	}
}

func TestGetUser(t *testing.T) {
	svc := NewUserService(newMockRepo())

	created, err := svc.CreateUser(context.Background(), domain.UserInput{Name: "Bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	user, err := svc.GetUser(context.Background(), created.ID)
	if err != nil || user.Name != "Bob" {
		t.Errorf("GetUser = %+v, %v; want Bob", user, err)
	}

	if _, err := svc.GetUser(context.Background(), 9999); !domain.IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestListUsers(t *testing.T) {
	svc := NewUserService(newMockRepo())
	_, _ = svc.CreateUser(context.Background(), domain.UserInput{Name: "Al", Email: "a@example.com"})
	_, _ = svc.CreateUser(context.Background(), domain.UserInput{Name: "Bo", Email: "b@example.com"})

	result, err := svc.ListUsers(context.Background(), domain.ListRequest{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalDoc != 2 {
		t.Errorf("total = %d; want 2", result.TotalDoc)
	}
}

func TestUpdateUser(t *testing.T) {
	repo := newMockRepo()
	svc := NewUserService(repo)

	created, err := svc.CreateUser(context.Background(), domain.UserInput{
		Name: "Alice", Email: "alice@example.com", Password: "first-password",
	})
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	oldHash := created.PasswordHash

	updated, err := svc.UpdateUser(context.Background(), created.ID, domain.UserInput{
		Name: "Alice B", Email: "alice.b@example.com", Role: domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Alice B" || updated.Role != domain.RoleAdmin {
		t.Errorf("updated = %+v", updated)
	}
	if updated.PasswordHash != oldHash {
		t.Error("empty password should keep the stored hash")
	}

	if _, err := svc.UpdateUser(context.Background(), 999, domain.UserInput{Name: "Nobody", Email: "n@example.com"}); !domain.IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
	if _, err := svc.UpdateUser(context.Background(), created.ID, domain.UserInput{Name: "", Email: "n@example.com"}); !domain.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	repo := newMockRepo()
	svc := NewUserService(repo)
	created, _ := svc.CreateUser(context.Background(), domain.UserInput{Name: "Alice", Email: "alice@example.com"})

	if err := svc.DeleteUser(context.Background(), created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteUser(context.Background(), created.ID); !domain.IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
}
