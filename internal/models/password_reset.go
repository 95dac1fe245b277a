package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordResetToken is one outstanding password-reset grant.
// Only the SHA-256 hash of the token is stored; the plaintext value is
// sent to the account's email address exactly once and never persisted.
//
// Invariant: at most one row may exist per account at any moment. The
// store enforces this by deleting all of an account's prior rows in the
// same transaction that inserts a new one.
type PasswordResetToken struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;"`
	AccountID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Account   Account    `gorm:"foreignKey:AccountID"`
	TokenHash string     `gorm:"size:64;not null;uniqueIndex"`
	ExpiresAt time.Time  `gorm:"not null"`
	UsedAt    *time.Time // nil while the token is unconsumed
	CreatedAt time.Time
}

func (t *PasswordResetToken) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return
}

// PasswordResetRateLimit is one reset request attempt, recorded for
// every forgot-password call whether or not the email maps to an
// account. Rows are append-only; the limiter counts them inside a
// trailing window and the cleanup job bulk-deletes stale ones.
type PasswordResetRateLimit struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;"`
	Email       string    `gorm:"size:255;not null;index"`
	RequestedAt time.Time `gorm:"not null;index"`
}

func (PasswordResetRateLimit) TableName() string {
	return "password_reset_rate_limits"
}

func (r *PasswordResetRateLimit) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.RequestedAt.IsZero() {
		r.RequestedAt = time.Now()
	}
	return
}
