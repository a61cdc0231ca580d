package auth

import (
	"context"

	"github.com/hugh/muse/internal/database/models"
)

// Authenticator defines the interface for user authentication operations.
type Authenticator interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) (*TokenPair, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

// SessionValidator confirms that a structurally valid token still belongs to a live session.
type SessionValidator interface {
	ValidateSession(ctx context.Context, claims *Claims) (*models.User, error)
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GeneratePair(userID uint, email, passwordHash string) (*TokenPair, error)
	ValidateAccess(tokenString string) (*Claims, error)
	ValidateRefresh(tokenString string) (*Claims, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator    = (*Service)(nil)
	_ SessionValidator = (*Service)(nil)
	_ TokenService     = (*JWTService)(nil)
)
