package auth

import (
	"strings"

	"leave-portal/internal/domain"
	"leave-portal/internal/shared/apperror"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if err := apperror.Validator().Struct(r); err != nil {
		return apperror.MapValidationError(err)
	}
	return nil
}

// RegisterRequest is what the sign-up form collects. ConfirmPassword is only
// checked locally and never sent.
type RegisterRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
	Role            string `json:"role" validate:"omitempty,oneof=EMPLOYEE MANAGER ADMIN"`
}

type registerPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// loginResponse matches { token, role, email, ... } from /users/login.
type loginResponse struct {
	Token  string    `json:"token"`
	Role   string    `json:"role"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	ID     domain.ID `json:"id"`
	UserID domain.ID `json:"userId"`
}

type UserResponse struct {
	ID    domain.ID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

type SessionResponse struct {
	Email  string `json:"email"`
	Role   string `json:"role"`
	Name   string `json:"name,omitempty"`
	UserID string `json:"userId,omitempty"`
}
