package models

import "gorm.io/datatypes"

type MemberRole string

const (
	MemberRoleBride  MemberRole = "bride"
	MemberRoleGroom  MemberRole = "groom"
	MemberRoleViewer MemberRole = "viewer"
	MemberRoleEditor MemberRole = "editor"
	MemberRoleOther  MemberRole = "other"
)

type MemberStatus string

const (
	MemberStatusInvited MemberStatus = "invited"
	MemberStatusActive  MemberStatus = "active"
	MemberStatusLeft    MemberStatus = "left"
)

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusSent     InviteStatus = "sent"
	InviteStatusAccepted InviteStatus = "accepted"
)

// Couple is the tenant root. Every planning record belongs to exactly one.
type Couple struct {
	Base
	Name         string          `gorm:"size:255;not null" json:"name"`
	WeddingDate  *datatypes.Date `json:"wedding_date,omitempty"`
	LanguagePref string          `gorm:"size:10;default:'en'" json:"language_pref"`
	Theme        string          `gorm:"size:50" json:"theme,omitempty"`

	Members []CoupleMember `gorm:"foreignKey:CoupleID" json:"-"`
}

func (Couple) TableName() string {
	return "couples"
}

type CoupleMember struct {
	Base
	CoupleID uint         `gorm:"not null;uniqueIndex:idx_couple_members_couple_user" json:"couple_id"`
	UserID   uint         `gorm:"not null;uniqueIndex:idx_couple_members_couple_user;index" json:"user_id"`
	Role     MemberRole   `gorm:"size:10;default:'other'" json:"role"`
	IsOwner  bool         `json:"is_owner"`
	Status   MemberStatus `gorm:"size:10;default:'invited';index" json:"status"`

	Couple *Couple `gorm:"foreignKey:CoupleID" json:"-"`
	User   *User   `gorm:"foreignKey:UserID" json:"-"`
}

func (CoupleMember) TableName() string {
	return "couple_members"
}

type CoupleInvite struct {
	Base
	CoupleID uint         `gorm:"not null;uniqueIndex:idx_couple_invites_couple_email" json:"couple_id"`
	Email    string       `gorm:"not null;uniqueIndex:idx_couple_invites_couple_email;index" json:"email"`
	Status   InviteStatus `gorm:"size:10;default:'pending'" json:"status"`

	Couple *Couple `gorm:"foreignKey:CoupleID" json:"-"`
}

func (CoupleInvite) TableName() string {
	return "couple_invites"
}
