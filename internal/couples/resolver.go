// Package couples resolves which couple workspace a user is acting in and
// manages membership state transitions.
package couples

import (
	"context"
	"errors"
	"fmt"

	"github.com/hugh/muse/internal/database/models"
	"gorm.io/gorm"
)

var ErrNoActiveCouple = errors.New("no active couple membership")

type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// ActiveMembership returns the user's oldest active membership. A user who
// belongs to several couples always acts in the one they joined first; ties
// on created_at go to the lower membership id.
func (r *Resolver) ActiveMembership(ctx context.Context, userID uint) (*models.CoupleMember, error) {
	var member models.CoupleMember
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.MemberStatusActive).
		Order("created_at ASC").
		Order("id ASC").
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveCouple
		}
		return nil, fmt.Errorf("resolving membership: %w", err)
	}
	return &member, nil
}

// ActiveCoupleID returns the id of the couple the user currently acts in.
func (r *Resolver) ActiveCoupleID(ctx context.Context, userID uint) (uint, error) {
	member, err := r.ActiveMembership(ctx, userID)
	if err != nil {
		return 0, err
	}
	return member.CoupleID, nil
}

// ActiveCouple loads the couple record behind ActiveCoupleID.
func (r *Resolver) ActiveCouple(ctx context.Context, userID uint) (*models.Couple, error) {
	coupleID, err := r.ActiveCoupleID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var couple models.Couple
	if err := r.db.WithContext(ctx).First(&couple, coupleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoActiveCouple
		}
		return nil, fmt.Errorf("loading couple: %w", err)
	}
	return &couple, nil
}
