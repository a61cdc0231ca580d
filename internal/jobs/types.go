package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeInviteEmail   = "email:partner_invite"
	TypeTaskReminders = "reminders:tasks_due"
)

// InviteEmailPayload carries one partner invitation. SealedPassword is the
// age-encrypted temporary password, empty when the partner already had an account.
type InviteEmailPayload struct {
	Email          string `json:"email"`
	InviterName    string `json:"inviter_name"`
	SealedPassword string `json:"sealed_password,omitempty"`
}

// NewInviteEmailTask builds a single-attempt task; invite email is best effort.
func NewInviteEmailTask(payload InviteEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeInviteEmail, data, asynq.MaxRetry(0), asynq.Queue("critical")), nil
}

// NewTaskRemindersTask is enqueued by the scheduler; it carries no payload.
func NewTaskRemindersTask() *asynq.Task {
	return asynq.NewTask(TypeTaskReminders, nil, asynq.MaxRetry(1), asynq.Queue("low"))
}
