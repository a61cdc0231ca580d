package models

import "time"

type UserRole string

const (
	UserRoleBride UserRole = "bride"
	UserRoleGroom UserRole = "groom"
	UserRoleOther UserRole = "other"
)

// Opposite returns the partner role for a bride or groom, other otherwise.
func (r UserRole) Opposite() UserRole {
	switch r {
	case UserRoleBride:
		return UserRoleGroom
	case UserRoleGroom:
		return UserRoleBride
	default:
		return UserRoleOther
	}
}

type User struct {
	Base
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FullName     string    `gorm:"size:255" json:"full_name"`
	Role         UserRole  `gorm:"size:10;default:'other'" json:"role"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	IsActive     bool      `json:"is_active"`
	DateJoined   time.Time `json:"date_joined"`
}

func (User) TableName() string {
	return "users"
}
