package user

// CreateUserRequest represents the input for creating a new user.
type CreateUserRequest struct {
	Name     string `json:"name" form:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Role     string `json:"role" form:"role" binding:"omitempty,oneof=admin buyer approver viewer"`
	Password string `json:"password" form:"password" binding:"omitempty,min=8,max=72"`
}

// UpdateUserRequest represents the input for updating an existing user.
// An empty password keeps the current one.
type UpdateUserRequest struct {
	Name     string `json:"name" form:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Role     string `json:"role" form:"role" binding:"omitempty,oneof=admin buyer approver viewer"`
	Password string `json:"password" form:"password" binding:"omitempty,min=8,max=72"`
}
