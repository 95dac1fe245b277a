package notifications

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// LogMailer stands in when SES is not configured (local development).
// It logs the would-be delivery instead of sending. The reset link is
// logged in full so the flow stays exercisable without an inbox.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendResetLink(ctx context.Context, email, token, baseURL string) error {
	m.log.Info("--- SIMULATING EMAIL SEND ---",
		zap.String("recipient", email),
		zap.String("subject", "Reset Your Password - Tweeter"),
		zap.String("reset_url", fmt.Sprintf("%s/reset-password/%s", baseURL, token)))
	return nil
}

func (m *LogMailer) SendPasswordChangedNotice(ctx context.Context, email string) error {
	m.log.Info("--- SIMULATING EMAIL SEND ---",
		zap.String("recipient", email),
		zap.String("subject", "Your Password Was Changed - Tweeter"))
	return nil
}
