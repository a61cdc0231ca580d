package dto

import (
	"github.com/hugh/muse/internal/api/validation"
	"github.com/hugh/muse/internal/database/models"
)

const maxPartnerNameLen = 100

type SignupRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FullName         string `json:"full_name"`
	Role             string `json:"role"`
	AvatarURL        string `json:"avatar_url,omitempty"`
	PartnerEmail     string `json:"partner_email,omitempty"`
	PartnerFirstName string `json:"partner_first_name,omitempty"`
	PartnerLastName  string `json:"partner_last_name,omitempty"`
}

func (r SignupRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Enter a valid email address"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if msg := validation.CheckPassword(r.Password); msg != "" {
		errors["password"] = msg
	}
	if r.FullName == "" {
		errors["full_name"] = "Full name is required"
	}
	if r.Role != string(models.UserRoleBride) && r.Role != string(models.UserRoleGroom) {
		errors["role"] = "Role must be 'bride' or 'groom'"
	}
	if r.PartnerEmail != "" && !validation.IsValidEmail(r.PartnerEmail) {
		errors["partner_email"] = "Enter a valid email address"
	}
	if len(r.PartnerFirstName) > maxPartnerNameLen {
		errors["partner_first_name"] = "Must be at most 100 characters"
	}
	if len(r.PartnerLastName) > maxPartnerNameLen {
		errors["partner_last_name"] = "Must be at most 100 characters"
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type PasswordChangeRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Validate checks only the new password's length; missing fields are reported
// by the auth service.
func (r PasswordChangeRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if r.NewPassword != "" {
		if msg := validation.CheckPassword(r.NewPassword); msg != "" {
			errors["new_password"] = msg
		}
	}
	return errors
}

type UserDTO struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url"`
}

func NewUserDTO(u *models.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      string(u.Role),
		AvatarURL: u.AvatarURL,
	}
}

type AuthResponse struct {
	User    UserDTO `json:"user"`
	Access  string  `json:"access"`
	Refresh string  `json:"refresh"`
}

type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type PasswordChangedResponse struct {
	PasswordChanged bool   `json:"password_changed"`
	Access          string `json:"access"`
	Refresh         string `json:"refresh"`
}

type CoupleDTO struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	WeddingDate  *string `json:"wedding_date"`
	LanguagePref string  `json:"language_pref"`
	Theme        string  `json:"theme"`
}

func NewCoupleDTO(c *models.Couple) *CoupleDTO {
	if c == nil {
		return nil
	}
	return &CoupleDTO{
		ID:           c.ID,
		Name:         c.Name,
		WeddingDate:  FormatDate(c.WeddingDate),
		LanguagePref: c.LanguagePref,
		Theme:        c.Theme,
	}
}

type MeResponse struct {
	User   UserDTO    `json:"user"`
	Couple *CoupleDTO `json:"couple"`
}
