package auth_test

import (
	"testing"
	"time"

	"github.com/hugh/muse/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_GenerateToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 30*time.Minute, 14*24*time.Hour)

	userID := uint(42)
	email := "test@example.com"
	stamp := auth.PasswordStamp("hash")

	t.Run("generates valid token", func(t *testing.T) {
		token, err := jwtService.GenerateToken(userID, email, stamp, auth.TokenTypeAccess)
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := jwtService.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, email, claims.Email)
		assert.Equal(t, auth.TokenTypeAccess, claims.TokenType)
		assert.Equal(t, stamp, claims.PasswordStamp)
	})

	t.Run("token contains correct issuer", func(t *testing.T) {
		token, err := jwtService.GenerateToken(userID, email, stamp, auth.TokenTypeAccess)
		require.NoError(t, err)

		claims, err := jwtService.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "muse", claims.Issuer)
	})

	t.Run("token contains correct subject", func(t *testing.T) {
		token, err := jwtService.GenerateToken(userID, email, stamp, auth.TokenTypeAccess)
		require.NoError(t, err)

		claims, err := jwtService.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "42", claims.Subject)
	})

	t.Run("each token has its own id", func(t *testing.T) {
		a, err := jwtService.GenerateToken(userID, email, stamp, auth.TokenTypeAccess)
		require.NoError(t, err)
		b, err := jwtService.GenerateToken(userID, email, stamp, auth.TokenTypeAccess)
		require.NoError(t, err)

		ca, err := jwtService.ValidateToken(a)
		require.NoError(t, err)
		cb, err := jwtService.ValidateToken(b)
		require.NoError(t, err)
		assert.NotEqual(t, ca.ID, cb.ID)
	})

	t.Run("refresh outlives access", func(t *testing.T) {
		pair, err := jwtService.GeneratePair(userID, email, "hash")
		require.NoError(t, err)

		access, err := jwtService.ValidateAccess(pair.Access)
		require.NoError(t, err)
		refresh, err := jwtService.ValidateRefresh(pair.Refresh)
		require.NoError(t, err)
		assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt.Time))
	})
}

func TestJWTService_ValidateToken(t *testing.T) {
	userID := uint(7)
	email := "test@example.com"
	stamp := auth.PasswordStamp("hash")

	t.Run("rejects expired token", func(t *testing.T) {
		jwtService := auth.NewJWTService("test-secret", time.Millisecond, time.Millisecond)

		token, err := jwtService.GenerateToken(userID, email, stamp, auth.TokenTypeAccess)
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)

		_, err = jwtService.ValidateToken(token)
		assert.Equal(t, auth.ErrExpiredToken, err)
	})

	t.Run("rejects tampered token", func(t *testing.T) {
		jwtService := auth.NewJWTService("test-secret", time.Hour, time.Hour)

		token, err := jwtService.GenerateToken(userID, email, stamp, auth.TokenTypeAccess)
		require.NoError(t, err)

		_, err = jwtService.ValidateToken(token + "tampered")
		assert.Equal(t, auth.ErrInvalidToken, err)
	})

	t.Run("rejects token signed with different secret", func(t *testing.T) {
		jwtService1 := auth.NewJWTService("secret-1", time.Hour, time.Hour)
		jwtService2 := auth.NewJWTService("secret-2", time.Hour, time.Hour)

		token, err := jwtService1.GenerateToken(userID, email, stamp, auth.TokenTypeAccess)
		require.NoError(t, err)

		_, err = jwtService2.ValidateToken(token)
		assert.Equal(t, auth.ErrInvalidToken, err)
	})

	t.Run("rejects malformed token", func(t *testing.T) {
		jwtService := auth.NewJWTService("test-secret", time.Hour, time.Hour)

		_, err := jwtService.ValidateToken("not-a-valid-jwt")
		assert.Equal(t, auth.ErrInvalidToken, err)
	})

	t.Run("rejects empty token", func(t *testing.T) {
		jwtService := auth.NewJWTService("test-secret", time.Hour, time.Hour)

		_, err := jwtService.ValidateToken("")
		assert.Equal(t, auth.ErrInvalidToken, err)
	})
}

func TestJWTService_TokenTypes(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", time.Hour, 24*time.Hour)

	pair, err := jwtService.GeneratePair(1, "a@example.com", "hash")
	require.NoError(t, err)

	tests := []struct {
		name     string
		validate func(string) (*auth.Claims, error)
		token    string
		wantErr  error
	}{
		{"access as access", jwtService.ValidateAccess, pair.Access, nil},
		{"refresh as refresh", jwtService.ValidateRefresh, pair.Refresh, nil},
		{"refresh as access", jwtService.ValidateAccess, pair.Refresh, auth.ErrWrongTokenType},
		{"access as refresh", jwtService.ValidateRefresh, pair.Access, auth.ErrWrongTokenType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.validate(tt.token)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestPasswordStamp(t *testing.T) {
	assert.Equal(t, auth.PasswordStamp("a"), auth.PasswordStamp("a"))
	assert.NotEqual(t, auth.PasswordStamp("a"), auth.PasswordStamp("b"))
	assert.Len(t, auth.PasswordStamp("a"), 16)
}

func TestHashPassword(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, auth.CheckPassword("correct horse", hash))
	assert.False(t, auth.CheckPassword("wrong", hash))
}
