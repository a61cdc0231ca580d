package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/muse/internal/auth"
	"github.com/hugh/muse/internal/mailer"
	"github.com/hugh/muse/pkg/crypto"
)

const inviteSubject = "You've been invited to plan on Muse"

// inlineSendTimeout bounds a fallback send when the queue is unavailable.
const inlineSendTimeout = 30 * time.Second

// ComposeInvite renders the invitation email. New accounts get their
// temporary credentials; existing users are told to log in as usual.
func ComposeInvite(invite auth.PartnerInvite, loginURL string) mailer.Message {
	lines := []string{
		fmt.Sprintf("%s added you to your wedding workspace on Muse.", invite.InviterName),
	}
	if invite.TemporaryPassword != "" {
		lines = append(lines,
			"An account was created for you.",
			"Email: "+invite.Email,
			"Temporary password: "+invite.TemporaryPassword,
			"Log in at: "+loginURL,
		)
	} else {
		lines = append(lines, "Log in with your existing account to start planning together.")
	}

	return mailer.Message{
		To:      []string{invite.Email},
		Subject: inviteSubject,
		Body:    strings.Join(lines, "\n"),
	}
}

// InviteDispatcher hands partner invitations to the worker through asynq.
// Without a queue client, or when enqueueing fails, it sends the email from a
// detached goroutine instead.
type InviteDispatcher struct {
	client    *asynq.Client
	encryptor *crypto.Encryptor
	mailer    mailer.Mailer
	loginURL  string
	logger    *slog.Logger
}

// NewInviteDispatcher drops the queue client when the encryptor's key is
// ephemeral: the worker could not open a payload sealed with it.
func NewInviteDispatcher(client *asynq.Client, encryptor *crypto.Encryptor, m mailer.Mailer, loginURL string, logger *slog.Logger) *InviteDispatcher {
	if client != nil && (encryptor == nil || encryptor.Ephemeral()) {
		logger.Warn("ENCRYPTION_KEY not set, sending invite emails inline instead of queueing")
		client = nil
	}
	return &InviteDispatcher{
		client:    client,
		encryptor: encryptor,
		mailer:    m,
		loginURL:  loginURL,
		logger:    logger,
	}
}

var _ auth.InviteNotifier = (*InviteDispatcher)(nil)

func (d *InviteDispatcher) NotifyInvite(ctx context.Context, invite auth.PartnerInvite) error {
	if d.client != nil {
		err := d.enqueue(ctx, invite)
		if err == nil {
			return nil
		}
		d.logger.Warn("failed to enqueue invite email, sending inline", "email", invite.Email, "error", err)
	}

	d.sendDetached(invite)
	return nil
}

func (d *InviteDispatcher) enqueue(ctx context.Context, invite auth.PartnerInvite) error {
	sealed, err := d.encryptor.Seal(invite.TemporaryPassword)
	if err != nil {
		return fmt.Errorf("sealing password: %w", err)
	}

	task, err := NewInviteEmailTask(InviteEmailPayload{
		Email:          invite.Email,
		InviterName:    invite.InviterName,
		SealedPassword: sealed,
	})
	if err != nil {
		return err
	}

	info, err := d.client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}

	d.logger.Debug("enqueued invite email", "task_id", info.ID, "email", invite.Email)
	return nil
}

func (d *InviteDispatcher) sendDetached(invite auth.PartnerInvite) {
	if d.mailer == nil {
		return
	}
	msg := ComposeInvite(invite, d.loginURL)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), inlineSendTimeout)
		defer cancel()

		if err := d.mailer.Send(ctx, msg); err != nil {
			d.logger.Warn("failed to send invite email", "email", invite.Email, "error", err)
		}
	}()
}
