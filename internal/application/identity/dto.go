package identity

import (
	"time"

	"github.com/dma/backend/internal/domain/identity"
	"github.com/dma/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
)

// RegisterInput contains the input for user registration
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
}

// UserResult is the account view returned by identity operations
type UserResult struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LoginResult bundles the authenticated user with their token pair
type LoginResult struct {
	User   UserResult      `json:"user"`
	Tokens *auth.TokenPair `json:"tokens"`
}

func toUserResult(user *identity.User) UserResult {
	return UserResult{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}
