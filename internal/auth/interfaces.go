package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-roster/internal/database/models"
)

// Authenticator is what the HTTP layer needs from the auth service.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	Authenticate(ctx context.Context, token string) (*Identity, error)
	Logout(ctx context.Context, token string) error
}

// TokenService signs the session cookie.
type TokenService interface {
	GenerateToken(sessionID string, userID uuid.UUID, expiresAt time.Time) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
)
