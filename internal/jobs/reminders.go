package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hugh/muse/internal/database/models"
	"github.com/hugh/muse/internal/targets"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SendDueTaskReminders notifies the assignee of every open task due on the
// day after now (UTC). A reminder already sent for a task is not repeated, so
// the job can run more than once a day. It returns the number created.
func SendDueTaskReminders(ctx context.Context, db *gorm.DB, now time.Time) (int, error) {
	today := now.UTC().Truncate(24 * time.Hour)
	tomorrow := today.AddDate(0, 0, 1)
	dayAfter := tomorrow.AddDate(0, 0, 1)

	var due []models.Task
	err := db.WithContext(ctx).
		Where("status <> ? AND assigned_to_id IS NOT NULL", models.TaskStatusDone).
		Where("due_date >= ? AND due_date < ?", datatypes.Date(tomorrow), datatypes.Date(dayAfter)).
		Order("id ASC").
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("loading due tasks: %w", err)
	}

	created := 0
	for _, task := range due {
		message := fmt.Sprintf("Reminder: %q is due tomorrow (%s)", task.Title, tomorrow.Format("2006-01-02"))

		var existing int64
		if err := db.WithContext(ctx).Model(&models.Notification{}).
			Where("user_id = ? AND target_type = ? AND target_id = ? AND message = ?",
				*task.AssignedToID, string(targets.KindTask), task.ID, message).
			Count(&existing).Error; err != nil {
			return created, fmt.Errorf("checking reminders: %w", err)
		}
		if existing > 0 {
			continue
		}

		coupleID := task.CoupleID
		taskID := task.ID
		notification := models.Notification{
			CoupleID:   &coupleID,
			UserID:     *task.AssignedToID,
			Message:    message,
			TargetType: string(targets.KindTask),
			TargetID:   &taskID,
		}
		if err := db.WithContext(ctx).Create(&notification).Error; err != nil {
			return created, fmt.Errorf("creating reminder: %w", err)
		}
		created++
	}

	return created, nil
}
