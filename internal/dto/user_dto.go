package dto

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateUserRequest struct {
	Username string  `json:"username" validate:"required,alphanum,min=3,max=30"`
	Name     string  `json:"name"     validate:"required,min=1,max=100"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password string  `json:"password" validate:"required,min=6,max=100"`
	Role     string  `json:"role"     validate:"required,oneof=Admin Manager Cashier"`
}

type UpdateUserRequest struct {
	Name   *string `json:"name"   validate:"omitempty,min=1,max=100"`
	Email  *string `json:"email"  validate:"omitempty,email"`
	Role   *string `json:"role"   validate:"omitempty,oneof=Admin Manager Cashier"`
	Active *bool   `json:"active"`
}

type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=6,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type UserResponse struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	Email    *string `json:"email,omitempty"`
	Role     string  `json:"role"`
	Active   bool    `json:"active"`
}

type RoleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
