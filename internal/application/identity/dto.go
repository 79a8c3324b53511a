package identity

import (
	"time"

	"github.com/charro/storefront/internal/domain/identity"
	"github.com/google/uuid"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// RegisterRequest represents a sign-up request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=200"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// ChangeRoleRequest changes the role of a user
type ChangeRoleRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
	Role   string    `json:"role" binding:"required,oneof=admin client super-user SEO"`
}

// UserListQuery selects the back-office user listing
type UserListQuery struct {
	Role     string `form:"role" binding:"omitempty,oneof=admin client super-user SEO"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// UserInfo is the public view of a user
type UserInfo struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

// UserResponse is the back-office view of a user
type UserResponse struct {
	UserInfo
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuthResponse is returned by login, register and token validation
type AuthResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// ToUserInfo converts a domain user
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

// ToUserResponse converts a domain user for the back office
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		UserInfo:  ToUserInfo(u),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
