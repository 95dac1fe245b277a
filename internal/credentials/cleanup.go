package credentials

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tweeter/backend/internal/models"
)

// CleanupRetention is how long expired tokens and rate-limit rows stay
// inspectable before permanent removal. It sits well past both the
// token lifetime and the rate-limit window, so purging never touches a
// row any live computation could still read.
const CleanupRetention = 24 * time.Hour

// CleanupJob purges rows the credential flows no longer need. Both
// purges are idempotent, order-independent, and safe to run at any
// cadence alongside live traffic; an external scheduler decides when.
type CleanupJob struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCleanupJob(db *gorm.DB, log *zap.Logger) *CleanupJob {
	return &CleanupJob{db: db, log: log}
}

// PurgeExpiredTokens deletes reset tokens whose expiry passed more than
// the retention window ago and returns how many were removed.
func (j *CleanupJob) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	result := j.db.WithContext(ctx).
		Where("expires_at < ?", time.Now().Add(-CleanupRetention)).
		Delete(&models.PasswordResetToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge expired reset tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// PurgeStaleRateLimits deletes rate-limit rows older than the retention
// window and returns how many were removed.
func (j *CleanupJob) PurgeStaleRateLimits(ctx context.Context) (int64, error) {
	result := j.db.WithContext(ctx).
		Where("requested_at < ?", time.Now().Add(-CleanupRetention)).
		Delete(&models.PasswordResetRateLimit{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge stale rate-limit records: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Run executes both purges and logs the counts. The second purge still
// runs when the first fails; errors are joined for the caller.
func (j *CleanupJob) Run(ctx context.Context) error {
	tokens, tokensErr := j.PurgeExpiredTokens(ctx)
	rateLimits, rateLimitsErr := j.PurgeStaleRateLimits(ctx)

	if tokensErr != nil {
		j.log.Error("Failed to purge expired reset tokens", zap.Error(tokensErr))
	}
	if rateLimitsErr != nil {
		j.log.Error("Failed to purge stale rate-limit records", zap.Error(rateLimitsErr))
	}
	if tokensErr != nil || rateLimitsErr != nil {
		return fmt.Errorf("cleanup incomplete: tokens=%v rate_limits=%v", tokensErr, rateLimitsErr)
	}

	j.log.Info("Password reset cleanup complete",
		zap.Int64("tokens_deleted", tokens),
		zap.Int64("rate_limits_deleted", rateLimits))
	return nil
}
