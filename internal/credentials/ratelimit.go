package credentials

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tweeter/backend/internal/models"
)

// Sliding-window budget for reset requests per email address.
const (
	RateLimitWindow      = time.Hour
	RateLimitMaxRequests = 3
)

// RequestRateLimiter bounds reset-request frequency per email using an
// append-only event log counted over a trailing window. The email is
// recorded raw, never joined to an account, so the log cannot leak
// which addresses exist.
type RequestRateLimiter struct {
	db *gorm.DB
}

func NewRequestRateLimiter(db *gorm.DB) *RequestRateLimiter {
	return &RequestRateLimiter{db: db}
}

// CheckExceeded reports whether the email already spent its budget for
// the trailing window. Callers must check before recording, so the
// request that hits the limit is the one past it, not the one at it.
func (l *RequestRateLimiter) CheckExceeded(ctx context.Context, email string) (bool, error) {
	var count int64
	err := l.db.WithContext(ctx).
		Model(&models.PasswordResetRateLimit{}).
		Where("email = ? AND requested_at > ?", email, time.Now().Add(-RateLimitWindow)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count reset requests: %w", err)
	}
	return count >= RateLimitMaxRequests, nil
}

// Record appends one request attempt. It is called for every
// forgot-password attempt, whether or not the email maps to an account;
// skipping unknown emails would make acceptance observable and let an
// attacker enumerate valid addresses.
func (l *RequestRateLimiter) Record(ctx context.Context, email string) error {
	record := models.PasswordResetRateLimit{Email: email}
	if err := l.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to record reset request: %w", err)
	}
	return nil
}
