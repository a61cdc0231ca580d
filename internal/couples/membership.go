package couples

import (
	"errors"
	"fmt"

	"github.com/hugh/muse/internal/api/validation"
	"github.com/hugh/muse/internal/database/models"
	"gorm.io/gorm"
)

// maxCoupleNameLen matches the size of couples.name.
const maxCoupleNameLen = 255

// ActivateInvitations flips every invited membership of the user to active and
// accepts every pending invite addressed to their email. Running it again is a
// no-op. Callers pass a transaction so both updates land together.
func ActivateInvitations(tx *gorm.DB, userID uint, email string) error {
	if err := tx.Model(&models.CoupleMember{}).
		Where("user_id = ? AND status = ?", userID, models.MemberStatusInvited).
		Update("status", models.MemberStatusActive).Error; err != nil {
		return fmt.Errorf("activating memberships: %w", err)
	}

	if err := tx.Model(&models.CoupleInvite{}).
		Where("email = ? AND status = ?", email, models.InviteStatusPending).
		Update("status", models.InviteStatusAccepted).Error; err != nil {
		return fmt.Errorf("accepting invites: %w", err)
	}

	return nil
}

// CreateWorkspace creates a couple owned by user with an active owner membership.
func CreateWorkspace(tx *gorm.DB, owner *models.User) (*models.Couple, error) {
	couple := models.Couple{
		Name:         validation.TruncateString(fmt.Sprintf("%s & Partner's Wedding", owner.FullName), maxCoupleNameLen),
		LanguagePref: "en",
	}
	if err := tx.Create(&couple).Error; err != nil {
		return nil, fmt.Errorf("creating couple: %w", err)
	}

	member := models.CoupleMember{
		CoupleID: couple.ID,
		UserID:   owner.ID,
		Role:     models.MemberRole(owner.Role),
		IsOwner:  true,
		Status:   models.MemberStatusActive,
	}
	if err := tx.Create(&member).Error; err != nil {
		return nil, fmt.Errorf("creating owner membership: %w", err)
	}

	return &couple, nil
}

// EnsureInvite gets or creates the pending invite for email. created reports
// whether a new row was written.
func EnsureInvite(tx *gorm.DB, coupleID uint, email string) (*models.CoupleInvite, bool, error) {
	var invite models.CoupleInvite
	err := tx.Where("couple_id = ? AND email = ?", coupleID, email).First(&invite).Error
	if err == nil {
		return &invite, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("looking up invite: %w", err)
	}

	invite = models.CoupleInvite{
		CoupleID: coupleID,
		Email:    email,
		Status:   models.InviteStatusPending,
	}
	if err := tx.Create(&invite).Error; err != nil {
		return nil, false, fmt.Errorf("creating invite: %w", err)
	}
	return &invite, true, nil
}

// EnsureMember gets or creates a membership for user in the couple. New rows
// start as invited, non-owner.
func EnsureMember(tx *gorm.DB, coupleID, userID uint, role models.MemberRole) (*models.CoupleMember, error) {
	var member models.CoupleMember
	err := tx.Where("couple_id = ? AND user_id = ?", coupleID, userID).First(&member).Error
	if err == nil {
		return &member, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("looking up membership: %w", err)
	}

	member = models.CoupleMember{
		CoupleID: coupleID,
		UserID:   userID,
		Role:     role,
		IsOwner:  false,
		Status:   models.MemberStatusInvited,
	}
	if err := tx.Create(&member).Error; err != nil {
		return nil, fmt.Errorf("creating membership: %w", err)
	}
	return &member, nil
}
