package schemas

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/calcforge/calcdb/internal/models"
)

// UserRegister is the request payload for creating an account.
type UserRegister struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the registration rules and returns every violation.
func (r *UserRegister) Validate() error {
	var violations []Violation

	username := strings.TrimSpace(r.Username)
	if len(username) < 3 {
		violations = append(violations, Violation{
			Field:   "username",
			Message: "must be at least three characters",
		})
	}
	email := strings.TrimSpace(r.Email)
	if email == "" || !strings.Contains(email, "@") {
		violations = append(violations, Violation{
			Field:   "email",
			Message: "must be a valid email address",
		})
	}
	if len(r.Password) < 8 {
		violations = append(violations, Violation{
			Field:   "password",
			Message: "must be at least eight characters",
		})
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// UserLogin is the request payload for signing in. Username accepts either
// the username or the email address.
type UserLogin struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks that both credential fields are present.
func (r *UserLogin) Validate() error {
	var violations []Violation

	if strings.TrimSpace(r.Username) == "" {
		violations = append(violations, Violation{
			Field:   "username",
			Message: "is required",
		})
	}
	if r.Password == "" {
		violations = append(violations, Violation{
			Field:   "password",
			Message: "is required",
		})
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// UserResponse is the wire shape of an account. The password hash never
// leaves the model layer.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse serializes a user model.
func NewUserResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// TokenResponse is returned on a successful login.
type TokenResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
