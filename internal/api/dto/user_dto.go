package dto

import (
	"time"

	"github.com/northgate-labs/user-service/internal/domain"
)

// UserResponse is the redacted account projection returned by every
// endpoint. The password hash has no field here on purpose.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserResponse projects a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Status:    string(user.Status),
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// NewUserResponses projects a slice of domain users.
func NewUserResponses(users []*domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i, user := range users {
		out[i] = NewUserResponse(user)
	}
	return out
}

// UserCreateRequest payload for admin-side account creation.
type UserCreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// UserUpdateRequest payload for profile updates.
type UserUpdateRequest struct {
	Name string `json:"name"`
}

// ChangeRoleRequest payload for role changes.
type ChangeRoleRequest struct {
	Role string `json:"role"`
}
