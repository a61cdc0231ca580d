package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hugh/muse/internal/api/dto"
	"github.com/hugh/muse/internal/auth"
	"github.com/hugh/muse/internal/couples"
)

type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "user_email"
	CoupleIDKey  contextKey = "couple_id"
)

// CoupleResolver maps a user to the couple workspace they act in.
type CoupleResolver interface {
	ActiveCoupleID(ctx context.Context, userID uint) (uint, error)
}

// Auth accepts a bearer access token and, when sessions is set, checks that
// the user is still active and has not changed password since it was issued.
func Auth(tokens auth.TokenService, sessions auth.SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided")
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			claims, err := tokens.ValidateAccess(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Given token not valid for any token type")
				return
			}

			if sessions != nil {
				if _, err := sessions.ValidateSession(r.Context(), claims); err != nil {
					writeError(w, http.StatusUnauthorized, "Given token not valid for any token type")
					return
				}
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, UserEmailKey, claims.Email)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCouple resolves the caller's active couple. Users without one get 404.
func RequireCouple(resolver CoupleResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			coupleID, err := resolver.ActiveCoupleID(r.Context(), GetUserID(r.Context()))
			if err != nil {
				if errors.Is(err, couples.ErrNoActiveCouple) {
					writeError(w, http.StatusNotFound, "No active couple membership")
					return
				}
				writeError(w, http.StatusInternalServerError, "Failed to resolve couple")
				return
			}

			ctx := context.WithValue(r.Context(), CoupleIDKey, coupleID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Helper functions to extract values from context
func GetUserID(ctx context.Context) uint {
	if id, ok := ctx.Value(UserIDKey).(uint); ok {
		return id
	}
	return 0
}

func GetUserEmail(ctx context.Context) string {
	if email, ok := ctx.Value(UserEmailKey).(string); ok {
		return email
	}
	return ""
}

func GetCoupleID(ctx context.Context) uint {
	if id, ok := ctx.Value(CoupleIDKey).(uint); ok {
		return id
	}
	return 0
}

// WithUserID returns ctx carrying userID, for handlers exercised without Auth.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// WithCoupleID returns ctx carrying coupleID, for handlers exercised without RequireCouple.
func WithCoupleID(ctx context.Context, coupleID uint) context.Context {
	return context.WithValue(ctx, CoupleIDKey, coupleID)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.Err(message))
}
