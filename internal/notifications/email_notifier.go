// Package notifications delivers the transactional email the credential
// flows produce: the reset link and the password-changed notice.
package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"
)

// SESMailer sends mail through AWS SES v2.
type SESMailer struct {
	client *sesv2.Client
	sender string
	log    *zap.Logger
}

// NewSESMailer builds a mailer for the region and sender address.
func NewSESMailer(ctx context.Context, region, sender string, log *zap.Logger) (*SESMailer, error) {
	if region == "" || sender == "" {
		return nil, fmt.Errorf("SES mailer requires a region and sender address")
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	return &SESMailer{
		client: sesv2.NewFromConfig(cfg),
		sender: sender,
		log:    log,
	}, nil
}

// SendResetLink emails the plaintext reset token embedded in a link.
// This is the only time the plaintext leaves the process.
func (m *SESMailer) SendResetLink(ctx context.Context, email, token, baseURL string) error {
	resetURL := fmt.Sprintf("%s/reset-password/%s", baseURL, token)

	bodyHTML := fmt.Sprintf(`
        <h2>Reset Your Password</h2>
        <p>You requested to reset your Tweeter password. Click the link below to choose a new one:</p>
        <p><a href="%s">Reset Password</a></p>
        <p>This link expires in 1 hour. If you did not request this, you can safely ignore this email; your password will not be changed.</p>
        <p>Or copy and paste this link into your browser:<br>%s</p>
    `, resetURL, resetURL)
	bodyText := fmt.Sprintf(
		"Reset Your Password\n\nYou requested to reset your Tweeter password. Open this link to choose a new one:\n\n%s\n\nThis link expires in 1 hour. If you did not request this, you can safely ignore this email; your password will not be changed.\n",
		resetURL)

	return m.send(ctx, email, "Reset Your Password - Tweeter", bodyHTML, bodyText)
}

// SendPasswordChangedNotice tells the account holder their password was
// just changed. Callers treat failures as best-effort.
func (m *SESMailer) SendPasswordChangedNotice(ctx context.Context, email string) error {
	timestamp := time.Now().UTC().Format("January 2, 2006 15:04 MST")

	bodyHTML := fmt.Sprintf(`
        <h2>Password Changed</h2>
        <p>Your Tweeter password was changed on <strong>%s</strong>.</p>
        <p>If you made this change, you can safely ignore this email.</p>
        <p><strong>If you did NOT make this change</strong>, contact support@tweeter.com immediately. Your account may have been compromised.</p>
    `, timestamp)
	bodyText := fmt.Sprintf(
		"Password Changed\n\nYour Tweeter password was changed on %s.\n\nIf you made this change, you can safely ignore this email.\n\nIf you did NOT make this change, contact support@tweeter.com immediately. Your account may have been compromised.\n",
		timestamp)

	return m.send(ctx, email, "Your Password Was Changed - Tweeter", bodyHTML, bodyText)
}

func (m *SESMailer) send(ctx context.Context, to, subject, bodyHTML, bodyText string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: &m.sender,
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(bodyHTML),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(bodyText),
						Charset: aws.String("UTF-8"),
					},
				},
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		m.log.Error("Failed to send email via SES",
			zap.String("recipient", to),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	m.log.Info("Sent email",
		zap.String("recipient", to),
		zap.String("subject", subject))
	return nil
}
