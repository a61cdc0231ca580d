package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Comment struct {
	Base
	SoftDelete
	CoupleID    uint   `gorm:"not null;index" json:"couple_id"`
	TargetType  string `gorm:"size:50;not null;index:idx_comments_target,priority:1" json:"target_type"`
	TargetID    uint   `gorm:"not null;index:idx_comments_target,priority:2" json:"target_id"`
	Body        string `gorm:"not null" json:"body"`
	CreatedByID *uint  `json:"created_by,omitempty"`

	CreatedBy *User `gorm:"foreignKey:CreatedByID" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}

type ActivityLog struct {
	Base
	CoupleID   uint              `gorm:"not null;index" json:"couple_id"`
	ActorID    *uint             `json:"actor_id,omitempty"`
	Verb       string            `gorm:"size:50;not null" json:"verb"`
	TargetType string            `gorm:"size:50" json:"target_type,omitempty"`
	TargetID   *uint             `json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `json:"metadata"`

	Actor *User `gorm:"foreignKey:ActorID" json:"-"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known task states.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	Base
	CoupleID     uint            `gorm:"not null;index:idx_tasks_couple_status,priority:1" json:"couple_id"`
	EventID      *uint           `gorm:"index:idx_tasks_event_due,priority:1" json:"event_id,omitempty"`
	Title        string          `gorm:"size:255;not null" json:"title"`
	Description  string          `json:"description"`
	Status       TaskStatus      `gorm:"size:20;default:'todo';index:idx_tasks_couple_status,priority:2" json:"status"`
	DueDate      *datatypes.Date `gorm:"index:idx_tasks_event_due,priority:2" json:"due_date,omitempty"`
	AssignedToID *uint           `json:"assigned_to,omitempty"`
	CreatedByID  *uint           `json:"created_by,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`

	Event      *Event `gorm:"foreignKey:EventID" json:"-"`
	AssignedTo *User  `gorm:"foreignKey:AssignedToID" json:"-"`
}

func (Task) TableName() string {
	return "tasks"
}

// BeforeSave keeps completed_at in step with status: stamped on the first
// save as done, cleared whenever the task leaves done.
func (t *Task) BeforeSave(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	if t.Status == TaskStatusDone {
		if t.CompletedAt == nil {
			now := time.Now().UTC()
			t.CompletedAt = &now
		}
		return nil
	}
	t.CompletedAt = nil
	return nil
}

type Notification struct {
	Base
	CoupleID   *uint  `gorm:"index" json:"couple_id,omitempty"`
	UserID     uint   `gorm:"not null;index:idx_notifications_user_read,priority:1" json:"user_id"`
	Message    string `gorm:"not null" json:"message"`
	TargetType string `gorm:"size:50" json:"target_type,omitempty"`
	TargetID   *uint  `json:"target_id,omitempty"`
	IsRead     bool   `gorm:"index:idx_notifications_user_read,priority:2" json:"is_read"`
}

func (Notification) TableName() string {
	return "notifications"
}
