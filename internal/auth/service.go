package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hugh/muse/internal/couples"
	"github.com/hugh/muse/internal/database/models"
	"github.com/hugh/muse/pkg/crypto"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserExists             = errors.New("user already exists")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrInactiveUser           = errors.New("user is inactive")
	ErrPasswordsRequired      = errors.New("old_password and new_password are required")
	ErrInvalidCurrentPassword = errors.New("invalid current password")
)

// PartnerInvite is handed to the InviteNotifier after signup commits.
type PartnerInvite struct {
	Email       string
	InviterName string
	// TemporaryPassword is set only when signup created the partner's account.
	TemporaryPassword string
}

// InviteNotifier delivers partner invitations. Delivery is best effort: a
// returned error is logged and never fails the signup.
type InviteNotifier interface {
	NotifyInvite(ctx context.Context, invite PartnerInvite) error
}

type Service struct {
	db       *gorm.DB
	jwt      *JWTService
	notifier InviteNotifier
	logger   *slog.Logger
}

func NewService(db *gorm.DB, jwt *JWTService, notifier InviteNotifier, logger *slog.Logger) *Service {
	return &Service{db: db, jwt: jwt, notifier: notifier, logger: logger}
}

type SignupInput struct {
	Email            string
	Password         string
	FullName         string
	Role             models.UserRole
	AvatarURL        string
	PartnerEmail     string
	PartnerFirstName string
	PartnerLastName  string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	User   *models.User
	Tokens *TokenPair
}

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a user, creates their couple workspace and, when a partner
// email is given, provisions the partner's invite, account and membership.
// All writes share one transaction; the invite email goes out after commit.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	email := NormalizeEmail(input.Email)
	partnerEmail := NormalizeEmail(input.PartnerEmail)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if count > 0 {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	var (
		user          models.User
		invite        *PartnerInvite
		inviteCreated bool
	)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user = models.User{
			Email:        email,
			PasswordHash: hash,
			FullName:     strings.TrimSpace(input.FullName),
			Role:         input.Role,
			AvatarURL:    input.AvatarURL,
			IsActive:     true,
			DateJoined:   time.Now().UTC(),
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("creating user: %w", err)
		}

		couple, err := couples.CreateWorkspace(tx, &user)
		if err != nil {
			return err
		}

		if partnerEmail == "" {
			return nil
		}

		_, inviteCreated, err = couples.EnsureInvite(tx, couple.ID, partnerEmail)
		if err != nil {
			return err
		}

		partnerRole := user.Role.Opposite()
		partner, tempPassword, err := s.ensurePartnerUser(tx, partnerEmail, partnerRole, input.PartnerFirstName, input.PartnerLastName)
		if err != nil {
			return err
		}

		if _, err := couples.EnsureMember(tx, couple.ID, partner.ID, models.MemberRole(partnerRole)); err != nil {
			return err
		}

		invite = &PartnerInvite{
			Email:             partnerEmail,
			InviterName:       user.FullName,
			TemporaryPassword: tempPassword,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if invite != nil && inviteCreated {
		s.sendInvite(ctx, *invite)
	}

	tokens, err := s.jwt.GeneratePair(user.ID, user.Email, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("issuing tokens: %w", err)
	}

	return &AuthResult{User: &user, Tokens: tokens}, nil
}

// ensurePartnerUser returns the existing account for email or creates one with
// a generated password, which is returned in clear for the invite email.
func (s *Service) ensurePartnerUser(tx *gorm.DB, email string, role models.UserRole, firstName, lastName string) (*models.User, string, error) {
	var partner models.User
	err := tx.Where("email = ?", email).First(&partner).Error
	if err == nil {
		return &partner, "", nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("looking up partner: %w", err)
	}

	tempPassword, err := crypto.TokenURLSafe(10)
	if err != nil {
		return nil, "", err
	}
	hash, err := HashPassword(tempPassword)
	if err != nil {
		return nil, "", fmt.Errorf("hashing partner password: %w", err)
	}

	partner = models.User{
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName)),
		Role:         role,
		IsActive:     true,
		DateJoined:   time.Now().UTC(),
	}
	if err := tx.Create(&partner).Error; err != nil {
		return nil, "", fmt.Errorf("creating partner: %w", err)
	}

	return &partner, tempPassword, nil
}

func (s *Service) sendInvite(ctx context.Context, invite PartnerInvite) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyInvite(ctx, invite); err != nil {
		s.logger.Warn("failed to send partner invite", "email", invite.Email, "error", err)
	}
}

// Login checks credentials and activates any memberships and invites that
// were waiting for this user.
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := NormalizeEmail(input.Email)

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return couples.ActivateInvitations(tx, user.ID, user.Email)
	})
	if err != nil {
		return nil, err
	}

	tokens, err := s.jwt.GeneratePair(user.ID, user.Email, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("issuing tokens: %w", err)
	}

	return &AuthResult{User: &user, Tokens: tokens}, nil
}

// Refresh exchanges a refresh token for a new pair. The old refresh token stays
// valid until it expires or the password changes.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwt.ValidateRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.ValidateSession(ctx, claims)
	if err != nil {
		return nil, err
	}

	tokens, err := s.jwt.GeneratePair(user.ID, user.Email, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("issuing tokens: %w", err)
	}

	return &AuthResult{User: user, Tokens: tokens}, nil
}

// ValidateSession checks that the token's user still exists, is active and
// has not changed password since the token was issued.
func (s *Service) ValidateSession(ctx context.Context, claims *Claims) (*models.User, error) {
	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive || PasswordStamp(user.PasswordHash) != claims.PasswordStamp {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// ChangePassword verifies the current password, stores the new one and returns
// a fresh pair. Tokens issued before the change stop validating.
func (s *Service) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) (*TokenPair, error) {
	if oldPassword == "" || newPassword == "" {
		return nil, ErrPasswordsRequired
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !CheckPassword(oldPassword, user.PasswordHash) {
		return nil, ErrInvalidCurrentPassword
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return nil, fmt.Errorf("saving password: %w", err)
	}

	return s.jwt.GeneratePair(user.ID, user.Email, hash)
}

func (s *Service) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
