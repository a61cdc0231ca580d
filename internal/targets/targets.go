// Package targets resolves the polymorphic (target_type, target_id) pairs used
// by comments, activity entries and notifications.
package targets

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hugh/muse/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUnsupportedTarget = errors.New("unsupported target type")
	ErrTargetNotFound    = errors.New("target not found")
)

// Kind names a record type that can be the subject of a comment, activity
// entry or notification.
type Kind string

const (
	KindEvent          Kind = "event"
	KindMoodBoardItem  Kind = "moodboard_item"
	KindBudgetLineItem Kind = "budget_line_item"
	KindHoneymoonItem  Kind = "honeymoon_item"
	KindTask           Kind = "task"
)

// Ref points at a single record of a given kind.
type Ref struct {
	Kind Kind
	ID   uint
}

// lookupFunc loads the record behind id when it belongs to coupleID.
type lookupFunc func(tx *gorm.DB, coupleID, id uint) (interface{}, error)

var lookups = map[Kind]lookupFunc{
	KindEvent:          lookupEvent,
	KindMoodBoardItem:  lookupMoodBoardItem,
	KindBudgetLineItem: lookupBudgetLineItem,
	KindHoneymoonItem:  lookupHoneymoonItem,
	KindTask:           lookupTask,
}

// ParseKind validates a wire value.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := lookups[k]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedTarget, s)
	}
	return k, nil
}

// Kinds lists every supported kind in lexical order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(lookups))
	for k := range lookups {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// Resolve returns the concrete record for ref, scoped to coupleID. Records that
// are missing, soft-deleted or owned by another couple all yield
// ErrTargetNotFound so other tenants stay invisible.
func (r *Resolver) Resolve(ctx context.Context, coupleID uint, ref Ref) (interface{}, error) {
	lookup, ok := lookups[ref.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedTarget, ref.Kind)
	}

	record, err := lookup(r.db.WithContext(ctx), coupleID, ref.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetNotFound
		}
		return nil, fmt.Errorf("resolving %s %d: %w", ref.Kind, ref.ID, err)
	}
	return record, nil
}

// Check is Resolve for callers that only need the ownership check.
func (r *Resolver) Check(ctx context.Context, coupleID uint, ref Ref) error {
	_, err := r.Resolve(ctx, coupleID, ref)
	return err
}

func lookupEvent(tx *gorm.DB, coupleID, id uint) (interface{}, error) {
	var event models.Event
	err := tx.Where("id = ? AND couple_id = ?", id, coupleID).First(&event).Error
	return &event, err
}

func lookupMoodBoardItem(tx *gorm.DB, coupleID, id uint) (interface{}, error) {
	var item models.MoodBoardItem
	err := tx.
		Joins("JOIN mood_boards ON mood_boards.id = mood_board_items.mood_board_id").
		Joins("JOIN events ON events.id = mood_boards.event_id AND events.deleted_at IS NULL").
		Where("mood_board_items.id = ? AND events.couple_id = ?", id, coupleID).
		First(&item).Error
	return &item, err
}

func lookupBudgetLineItem(tx *gorm.DB, coupleID, id uint) (interface{}, error) {
	var item models.BudgetLineItem
	err := tx.
		Joins("JOIN event_budget_categories ON event_budget_categories.id = budget_line_items.event_budget_category_id").
		Joins("JOIN event_budgets ON event_budgets.id = event_budget_categories.event_budget_id").
		Joins("JOIN events ON events.id = event_budgets.event_id AND events.deleted_at IS NULL").
		Where("budget_line_items.id = ? AND events.couple_id = ?", id, coupleID).
		First(&item).Error
	return &item, err
}

func lookupHoneymoonItem(tx *gorm.DB, coupleID, id uint) (interface{}, error) {
	var item models.HoneymoonItem
	err := tx.
		Joins("JOIN honeymoon_plans ON honeymoon_plans.id = honeymoon_items.honeymoon_plan_id").
		Joins("JOIN events ON events.id = honeymoon_plans.event_id AND events.deleted_at IS NULL").
		Where("honeymoon_items.id = ? AND events.couple_id = ?", id, coupleID).
		First(&item).Error
	return &item, err
}

func lookupTask(tx *gorm.DB, coupleID, id uint) (interface{}, error) {
	var task models.Task
	err := tx.Where("id = ? AND couple_id = ?", id, coupleID).First(&task).Error
	return &task, err
}
