package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/haroonyaqubi/task-flow-app/internal/config"
	"github.com/haroonyaqubi/task-flow-app/internal/jobs"
	"github.com/haroonyaqubi/task-flow-app/internal/mailer"
	"github.com/haroonyaqubi/task-flow-app/internal/models"
)

// HandleDeliverContactMessage mails a stored contact message to the site
// address and stamps it as delivered. Already delivered messages are skipped.
func HandleDeliverContactMessage(ctx context.Context, t *asynq.Task, db *gorm.DB, m mailer.Mailer, mailCfg config.MailConfig, logger zerolog.Logger) error {
	payload, err := jobs.ParseContactPayload(t)
	if err != nil {
		return fmt.Errorf("failed to parse payload: %v: %w", err, asynq.SkipRetry)
	}

	var msg models.ContactMessage
	if err := models.FindByID(db, payload.MessageID, &msg); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn().Str("message_id", payload.MessageID).Msg("Contact message no longer exists")
			return fmt.Errorf("contact message %s not found: %w", payload.MessageID, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to load contact message: %w", err)
	}

	if msg.DeliveredAt != nil {
		logger.Info().Str("message_id", msg.ID).Msg("Contact message already delivered")
		return nil
	}

	err = m.Send(ctx, mailer.Message{
		From:    mailCfg.FromAddress,
		To:      []string{mailCfg.FromAddress},
		Subject: "Contact Form: " + msg.Subject,
		Body:    fmt.Sprintf("From: %s <%s>\n\nMessage:\n%s", msg.Name, msg.Email, msg.Message),
	})
	if err != nil {
		logger.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to deliver contact message")
		return fmt.Errorf("failed to deliver contact message: %w", err)
	}

	now := time.Now()
	if err := db.Model(&msg).Update("delivered_at", now).Error; err != nil {
		return fmt.Errorf("failed to mark contact message delivered: %w", err)
	}

	logger.Info().
		Str("message_id", msg.ID).
		Str("email", msg.Email).
		Msg("Contact message delivered")

	return nil
}
