package users

import (
	"strings"
	"time"

	"github.com/ogsoda/delivery-backend/pkg/db/models"
	"github.com/ogsoda/delivery-backend/pkg/enums"
)

// PasswordHashNote accompanies every stored-hash lookup.
const PasswordHashNote = "Passwords are hashed using bcrypt and cannot be decrypted. This is the stored hash."

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Email     *string          `json:"email"`
	Phone     *string          `json:"phone"`
	Role      enums.UserRole   `json:"role"`
	Status    enums.UserStatus `json:"status"`
	LastLogin *time.Time       `json:"last_login"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// CreateUserRequest is the body of POST /users.
type CreateUserRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=255"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=1,max=50"`
	Password string  `json:"password" validate:"required,min=6"`
	Role     string  `json:"role,omitempty" validate:"omitempty,oneof=super_admin admin agent customer poweradmin"`
}

// UpdateUserRequest is the body of PUT /users/{id}. Only supplied fields change.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,min=1,max=50"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
	Role     *string `json:"role,omitempty" validate:"omitempty,oneof=super_admin admin agent customer poweradmin"`
	Status   *string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

// PasswordHashQuery selects the user whose stored hash is returned.
// The first non-empty selector wins, in field order.
type PasswordHashQuery struct {
	UserID   *int64
	Username string
	Email    string
}

// PasswordHashResponse exposes the stored credential of one user.
type PasswordHashResponse struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	PasswordHash string  `json:"password_hash"`
	Note         string  `json:"note"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		Status:    u.Status,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func FromModels(list []models.User) []UserDTO {
	out := make([]UserDTO, 0, len(list))
	for i := range list {
		out = append(out, *FromModel(&list[i]))
	}
	return out
}

// normalizeEmail lower-cases and trims; empty input yields nil.
func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	v := strings.ToLower(strings.TrimSpace(*email))
	if v == "" {
		return nil
	}
	return &v
}

func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	v := strings.TrimSpace(*phone)
	if v == "" {
		return nil
	}
	return &v
}
