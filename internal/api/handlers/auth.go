package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/hugh/muse/internal/api/dto"
	"github.com/hugh/muse/internal/api/middleware"
	"github.com/hugh/muse/internal/auth"
	"github.com/hugh/muse/internal/couples"
	"github.com/hugh/muse/internal/database/models"
)

const refreshCookieName = "refresh_token"

// CookieConfig controls the refresh token cookie.
type CookieConfig struct {
	Secure bool
	MaxAge time.Duration
}

type AuthHandler struct {
	authService auth.Authenticator
	couples     *couples.Resolver
	cookie      CookieConfig
	logger      *slog.Logger
}

func NewAuthHandler(authService auth.Authenticator, couples *couples.Resolver, cookie CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, couples: couples, cookie: cookie, logger: logger}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if respondValidation(w, req.Validate()) {
		return
	}

	result, err := h.authService.Signup(r.Context(), auth.SignupInput{
		Email:            req.Email,
		Password:         req.Password,
		FullName:         req.FullName,
		Role:             models.UserRole(req.Role),
		AvatarURL:        req.AvatarURL,
		PartnerEmail:     req.PartnerEmail,
		PartnerFirstName: req.PartnerFirstName,
		PartnerLastName:  req.PartnerLastName,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			respondError(w, http.StatusBadRequest, "email: A user with that email already exists")
			return
		}
		if errors.Is(err, auth.ErrPasswordTooLong) {
			respondError(w, http.StatusBadRequest, "password: Password must be at most 72 bytes")
			return
		}
		h.logger.Error("signup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Signup failed")
		return
	}

	h.setRefreshCookie(w, result.Tokens.Refresh)
	respond(w, http.StatusCreated, dto.AuthResponse{
		User:    dto.NewUserDTO(result.User),
		Access:  result.Tokens.Access,
		Refresh: result.Tokens.Refresh,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if respondValidation(w, req.Validate()) {
		return
	}

	result, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInactiveUser):
			respondError(w, http.StatusBadRequest, "Invalid credentials")
		default:
			h.logger.Error("login failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	h.setRefreshCookie(w, result.Tokens.Refresh)
	respond(w, http.StatusOK, dto.AuthResponse{
		User:    dto.NewUserDTO(result.User),
		Access:  result.Tokens.Access,
		Refresh: result.Tokens.Refresh,
	})
}

// Refresh accepts the refresh token from the body or, failing that, the cookie.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token := req.Refresh
	if token == "" {
		if c, err := r.Cookie(refreshCookieName); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "Refresh token not provided")
		return
	}

	result, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) || errors.Is(err, auth.ErrWrongTokenType) {
			respondError(w, http.StatusUnauthorized, "Token is invalid or expired")
			return
		}
		h.logger.Error("token refresh failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Refresh failed")
		return
	}

	h.setRefreshCookie(w, result.Tokens.Refresh)
	respond(w, http.StatusOK, dto.TokenResponse{
		Access:  result.Tokens.Access,
		Refresh: result.Tokens.Refresh,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	respond(w, http.StatusOK, map[string]bool{"logged_out": true})
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if respondValidation(w, req.Validate()) {
		return
	}

	tokens, err := h.authService.ChangePassword(r.Context(), middleware.GetUserID(r.Context()), req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordsRequired):
			respondError(w, http.StatusBadRequest, "old_password and new_password are required")
		case errors.Is(err, auth.ErrInvalidCurrentPassword):
			respondError(w, http.StatusBadRequest, "Invalid current password")
		case errors.Is(err, auth.ErrPasswordTooLong):
			respondError(w, http.StatusBadRequest, "new_password: Password must be at most 72 bytes")
		default:
			h.logger.Error("password change failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Password change failed")
		}
		return
	}

	h.setRefreshCookie(w, tokens.Refresh)
	respond(w, http.StatusOK, dto.PasswordChangedResponse{
		PasswordChanged: true,
		Access:          tokens.Access,
		Refresh:         tokens.Refresh,
	})
}

// Me returns the caller and their active couple, which is null before any
// membership is active.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, err := h.authService.GetUserByID(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondError(w, http.StatusNotFound, msgNotFound)
		return
	}

	couple, err := h.couples.ActiveCouple(ctx, user.ID)
	if err != nil && !errors.Is(err, couples.ErrNoActiveCouple) {
		h.logger.Error("loading couple failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load couple")
		return
	}

	respond(w, http.StatusOK, dto.MeResponse{
		User:   dto.NewUserDTO(user),
		Couple: dto.NewCoupleDTO(couple),
	})
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
	})
}
