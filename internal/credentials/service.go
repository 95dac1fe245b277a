package credentials

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tweeter/backend/internal/models"
	"tweeter/backend/pkg/metrics"
)

// MinPasswordLength applies to signup and reset alike.
const MinPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)

// AccountStore is the slice of account storage the credential flows
// consume. Lookups return (nil, nil) when no account matches.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TokenStore is the reset-token lifecycle (see ResetTokenStore).
type TokenStore interface {
	Issue(ctx context.Context, accountID uuid.UUID) (string, time.Time, error)
	Validate(ctx context.Context, plaintext string) (TokenInfo, error)
	Consume(ctx context.Context, plaintext, newPasswordHash string) (TokenInfo, error)
}

// RateLimiter bounds forgot-password frequency per email.
type RateLimiter interface {
	CheckExceeded(ctx context.Context, email string) (bool, error)
	Record(ctx context.Context, email string) error
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encoded, password string) bool
}

// SessionIssuer mints signed session tokens.
type SessionIssuer interface {
	Issue(accountID uuid.UUID) (string, error)
}

// Mailer delivers the two transactional messages of the reset flow. A
// failed reset link is a user-visible error; a failed changed-notice is
// logged and swallowed.
type Mailer interface {
	SendResetLink(ctx context.Context, email, token, baseURL string) error
	SendPasswordChangedNotice(ctx context.Context, email string) error
}

// Service composes the credential components into the signup, signin,
// forgot-password, and reset-password flows. All collaborators arrive
// through the constructor; the service holds no package-level state.
type Service struct {
	accounts AccountStore
	tokens   TokenStore
	limiter  RateLimiter
	hasher   PasswordHasher
	sessions SessionIssuer
	mailer   Mailer
	baseURL  string
	log      *zap.Logger
}

func NewService(
	accounts AccountStore,
	tokens TokenStore,
	limiter RateLimiter,
	hasher PasswordHasher,
	sessions SessionIssuer,
	mailer Mailer,
	baseURL string,
	log *zap.Logger,
) *Service {
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		limiter:  limiter,
		hasher:   hasher,
		sessions: sessions,
		mailer:   mailer,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		log:      log,
	}
}

// SignupInput is the raw signup request.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// Signup creates an account and opens its first session. The uniqueness
// checks run first for field-scoped errors, but a duplicate-key failure
// from the insert itself still maps to a conflict: two concurrent
// signups can both pass the check, and the unique index settles it.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*models.Account, string, error) {
	username := strings.TrimSpace(input.Username)
	email := normalizeEmail(input.Email)

	if !usernamePattern.MatchString(username) {
		return nil, "", &ValidationError{
			Field:   "username",
			Message: "Username must be 3-20 characters of letters, numbers, hyphens, and underscores",
		}
	}
	if len(input.Password) < MinPasswordLength {
		return nil, "", &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
		}
	}

	if taken, err := s.accounts.ExistsByUsername(ctx, username); err != nil {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	} else if taken {
		return nil, "", &ConflictError{Field: "username", Message: "Username already taken"}
	}
	if taken, err := s.accounts.ExistsByEmail(ctx, email); err != nil {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	} else if taken {
		return nil, "", &ConflictError{Field: "email", Message: "Email already registered"}
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, "", &ConflictError{Field: "username", Message: "Username or email already taken"}
		}
		return nil, "", fmt.Errorf("failed to create account: %w", err)
	}

	token, err := s.sessions.Issue(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session: %w", err)
	}
	metrics.SessionsIssued.WithLabelValues("signup").Inc()

	return account, token, nil
}

// Signin authenticates by email and password. Unknown email and wrong
// password both come back as ErrInvalidCredentials; which one failed is
// never revealed.
func (s *Service) Signin(ctx context.Context, email, password string) (*models.Account, string, error) {
	account, err := s.accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil || !s.hasher.Verify(account.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.sessions.Issue(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session: %w", err)
	}
	metrics.SessionsIssued.WithLabelValues("signin").Inc()

	return account, token, nil
}

// CurrentAccount resolves a verified session's account id to the
// account record, or (nil, nil) if the account no longer exists.
func (s *Service) CurrentAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	return s.accounts.FindByID(ctx, accountID)
}

// ForgotPassword runs the reset-request flow. Its response carries no
// signal about whether the email is registered: the rate limit is
// checked and the attempt recorded for every caller, and only then, if
// an account exists, is a token issued and mailed. The check precedes
// the record so the request past the budget is the rejected one.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	exceeded, err := s.limiter.CheckExceeded(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to check rate limit: %w", err)
	}
	if exceeded {
		metrics.ResetRequestsRateLimited.Inc()
		return ErrRateLimited
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up account: %w", err)
	}

	if err := s.limiter.Record(ctx, email); err != nil {
		return fmt.Errorf("failed to record reset request: %w", err)
	}

	if account == nil {
		s.log.Info("Password reset requested for unknown email")
		return nil
	}

	plaintext, _, err := s.tokens.Issue(ctx, account.ID)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}
	metrics.ResetTokensIssued.Inc()

	// The flow is useless without the link, so this failure surfaces.
	if err := s.mailer.SendResetLink(ctx, account.Email, plaintext, s.baseURL); err != nil {
		return fmt.Errorf("failed to send reset link: %w", err)
	}
	return nil
}

// TokenVerification is the pre-submission state of a reset token.
// Email is set only when the token is valid.
type TokenVerification struct {
	State TokenState
	Email string
}

// VerifyResetToken classifies a token without consuming it, for the
// reset form to decide what to render before the user types anything.
func (s *Service) VerifyResetToken(ctx context.Context, plaintext string) (TokenVerification, error) {
	info, err := s.tokens.Validate(ctx, plaintext)
	if err != nil {
		return TokenVerification{}, err
	}
	if info.State != TokenValid {
		return TokenVerification{State: info.State}, nil
	}

	account, err := s.accounts.FindByID(ctx, info.AccountID)
	if err != nil {
		return TokenVerification{}, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		// Token outlived its account; report it as unusable.
		return TokenVerification{State: TokenNotFound}, nil
	}
	return TokenVerification{State: TokenValid, Email: account.Email}, nil
}

// ResetResult is the outcome of a reset-password attempt. Account and
// SessionToken are set only when State is TokenValid.
type ResetResult struct {
	State        TokenState
	Account      *models.Account
	SessionToken string
}

// ResetPassword consumes the token, applies the new password, and opens
// a session for the account. The changed-notice email is best-effort.
func (s *Service) ResetPassword(ctx context.Context, plaintext, newPassword string) (*ResetResult, error) {
	if len(newPassword) < MinPasswordLength {
		return nil, &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", MinPasswordLength),
		}
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	info, err := s.tokens.Consume(ctx, plaintext, passwordHash)
	if err != nil {
		return nil, err
	}
	metrics.ResetTokensConsumed.WithLabelValues(string(info.State)).Inc()
	if info.State != TokenValid {
		return &ResetResult{State: info.State}, nil
	}

	account, err := s.accounts.FindByID(ctx, info.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %s missing after password reset", info.AccountID)
	}

	token, err := s.sessions.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}
	metrics.SessionsIssued.WithLabelValues("password_reset").Inc()

	if err := s.mailer.SendPasswordChangedNotice(ctx, account.Email); err != nil {
		s.log.Warn("Failed to send password changed notice", zap.Error(err))
	}

	return &ResetResult{State: TokenValid, Account: account, SessionToken: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
