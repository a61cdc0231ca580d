package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/muse/internal/auth"
	"github.com/hugh/muse/internal/mailer"
	"github.com/hugh/muse/pkg/crypto"
	"gorm.io/gorm"
)

type Handler struct {
	db        *gorm.DB
	logger    *slog.Logger
	mailer    mailer.Mailer
	encryptor *crypto.Encryptor
	loginURL  string
	now       func() time.Time
}

func NewHandler(db *gorm.DB, logger *slog.Logger, m mailer.Mailer, encryptor *crypto.Encryptor, loginURL string) *Handler {
	return &Handler{
		db:        db,
		logger:    logger,
		mailer:    m,
		encryptor: encryptor,
		loginURL:  loginURL,
		now:       time.Now,
	}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeInviteEmail, h.HandleInviteEmail)
	mux.HandleFunc(TypeTaskReminders, h.HandleTaskReminders)
}

func (h *Handler) HandleInviteEmail(ctx context.Context, t *asynq.Task) error {
	var payload InviteEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	password, err := h.encryptor.Open(payload.SealedPassword)
	if err != nil {
		return fmt.Errorf("opening password: %w: %w", err, asynq.SkipRetry)
	}

	msg := ComposeInvite(auth.PartnerInvite{
		Email:             payload.Email,
		InviterName:       payload.InviterName,
		TemporaryPassword: password,
	}, h.loginURL)

	if err := h.mailer.Send(ctx, msg); err != nil {
		h.logger.Warn("failed to send invite email", "email", payload.Email, "error", err)
		return fmt.Errorf("sending invite: %w: %w", err, asynq.SkipRetry)
	}

	h.logger.Info("sent invite email", "email", payload.Email)
	return nil
}

func (h *Handler) HandleTaskReminders(ctx context.Context, t *asynq.Task) error {
	created, err := SendDueTaskReminders(ctx, h.db, h.now())
	if err != nil {
		h.logger.Error("task reminders failed", "error", err)
		return err
	}

	h.logger.Info("sent task reminders", "count", created)
	return nil
}
