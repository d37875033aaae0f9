package user

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Query filters the admin user listing.
type Query struct {
	Role   string
	Limit  int
	Offset int
}

// CreateUserRequest payload of creation.
// swagger:model CreateUserRequest
type CreateUserRequest struct {
	Name     string `json:"name"     binding:"required"                  example:"Ana Pérez"`
	Email    string `json:"email"    binding:"required,email"            example:"ana@mail.com"`
	Password string `json:"password" binding:"required"                  example:"password1"`
	Role     string `json:"role"     binding:"required,oneof=user admin" example:"user"`
}

// UpdateUserRequest payload of partial update. Empty fields are kept.
// swagger:model UpdateUserRequest
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"    binding:"omitempty,email"`
	Password string `json:"password"`
	Role     string `json:"role"     binding:"omitempty,oneof=user admin"`
}
