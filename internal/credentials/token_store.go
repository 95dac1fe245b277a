package credentials

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tweeter/backend/internal/models"
)

// ResetTokenLifetime is how long a reset token stays redeemable.
const ResetTokenLifetime = time.Hour

// TokenInfo is the outcome of validating or consuming a reset token.
// AccountID is set for every state except TokenNotFound.
type TokenInfo struct {
	State     TokenState
	AccountID uuid.UUID
}

// ResetTokenStore generates, persists, validates, and consumes
// single-use password-reset tokens. Only SHA-256 hashes are stored; the
// plaintext token exists in memory just long enough to be emailed.
type ResetTokenStore struct {
	db *gorm.DB
}

func NewResetTokenStore(db *gorm.DB) *ResetTokenStore {
	return &ResetTokenStore{db: db}
}

// Issue creates a fresh token for the account and returns its plaintext
// value and expiry. Every prior token of the account is deleted in the
// same transaction, keeping at most one outstanding token per account.
// The owning profile row is locked first so two concurrent requests
// cannot both commit an active token.
func (s *ResetTokenStore) Issue(ctx context.Context, accountID uuid.UUID) (string, time.Time, error) {
	plaintext, err := generateResetToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := time.Now().Add(ResetTokenLifetime)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			Take(&owner, "id = ?", accountID).Error; err != nil {
			return fmt.Errorf("failed to lock account row: %w", err)
		}

		if err := tx.Where("account_id = ?", accountID).
			Delete(&models.PasswordResetToken{}).Error; err != nil {
			return fmt.Errorf("failed to delete prior reset tokens: %w", err)
		}

		token := models.PasswordResetToken{
			AccountID: accountID,
			TokenHash: hashResetToken(plaintext),
			ExpiresAt: expiresAt,
		}
		if err := tx.Create(&token).Error; err != nil {
			return fmt.Errorf("failed to save reset token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return plaintext, expiresAt, nil
}

// Validate hashes the plaintext token, looks it up, and classifies it.
// It performs no writes.
func (s *ResetTokenStore) Validate(ctx context.Context, plaintext string) (TokenInfo, error) {
	var row models.PasswordResetToken
	err := s.db.WithContext(ctx).
		Where("token_hash = ?", hashResetToken(plaintext)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return TokenInfo{State: TokenNotFound}, nil
	}
	if err != nil {
		return TokenInfo{}, fmt.Errorf("failed to look up reset token: %w", err)
	}
	return TokenInfo{State: classifyToken(&row, time.Now()), AccountID: row.AccountID}, nil
}

// Consume redeems the token: it re-validates under a row lock, applies
// the new password hash to the owning account, and marks the token used
// as the final write. All three steps run in one transaction, so a
// crash mid-operation leaves neither a changed password with a live
// token nor a burned token with an unchanged password. A token that is
// not VALID at the instant of consumption causes no writes; its state
// is returned for the caller to surface.
func (s *ResetTokenStore) Consume(ctx context.Context, plaintext, newPasswordHash string) (TokenInfo, error) {
	var info TokenInfo
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.PasswordResetToken
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token_hash = ?", hashResetToken(plaintext)).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			info = TokenInfo{State: TokenNotFound}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up reset token: %w", err)
		}

		now := time.Now()
		info = TokenInfo{State: classifyToken(&row, now), AccountID: row.AccountID}
		if info.State != TokenValid {
			return nil
		}

		if err := tx.Model(&models.Account{}).
			Where("id = ?", row.AccountID).
			Update("password_hash", newPasswordHash).Error; err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}

		// The used_at write stays last so a failure fails closed.
		if err := tx.Model(&models.PasswordResetToken{}).
			Where("id = ?", row.ID).
			Update("used_at", now).Error; err != nil {
			return fmt.Errorf("failed to mark reset token used: %w", err)
		}
		return nil
	})
	if err != nil {
		return TokenInfo{}, err
	}
	return info, nil
}

// classifyToken orders the terminal states: a consumed token reports
// USED regardless of expiry, while a never-consumed token that has
// passed its expiry reports EXPIRED.
func classifyToken(row *models.PasswordResetToken, now time.Time) TokenState {
	if row.UsedAt != nil {
		return TokenUsed
	}
	if now.After(row.ExpiresAt) {
		return TokenExpired
	}
	return TokenValid
}

// generateResetToken returns a hex-encoded token with 256 bits of
// entropy from crypto/rand.
func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// hashResetToken is the one-way form a token takes at rest.
func hashResetToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
