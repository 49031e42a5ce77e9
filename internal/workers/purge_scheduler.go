package workers

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/haroonyaqubi/task-flow-app/internal/models"
)

// Standard 5-field format: minute hour day-of-month month day-of-week
var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NewTokenPurgeScheduler returns a cron runner that purges expired revoked
// tokens on schedule. The caller starts and stops it.
func NewTokenPurgeScheduler(db *gorm.DB, schedule string, logger zerolog.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithParser(scheduleParser))

	_, err := c.AddFunc(schedule, func() {
		if _, err := PurgeExpiredTokens(db, time.Now(), logger); err != nil {
			logger.Error().Err(err).Msg("Token purge failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token purge schedule %q: %w", schedule, err)
	}

	if next := NextPurgeTime(schedule, time.Now()); next != nil {
		logger.Info().
			Str("schedule", schedule).
			Time("next_purge_at", *next).
			Msg("Token purge scheduled")
	}

	return c, nil
}

// PurgeExpiredTokens deletes revocation records for tokens that have expired by now.
// Expiry times are stored in UTC.
func PurgeExpiredTokens(db *gorm.DB, now time.Time, logger zerolog.Logger) (int64, error) {
	result := db.Where("expires_at <= ?", now.UTC()).Delete(&models.RevokedToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge revoked tokens: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		logger.Info().Int64("purged", result.RowsAffected).Msg("Purged expired revoked tokens")
	} else {
		logger.Debug().Msg("No expired revoked tokens to purge")
	}
	return result.RowsAffected, nil
}

// NextPurgeTime calculates the next run after from, or nil for an invalid schedule
func NextPurgeTime(cronExpr string, from time.Time) *time.Time {
	if cronExpr == "" {
		return nil
	}

	schedule, err := scheduleParser.Parse(cronExpr)
	if err != nil {
		return nil
	}

	next := schedule.Next(from)
	return &next
}
