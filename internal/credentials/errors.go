package credentials

import "errors"

// Routine failure modes of the credential flows. Handlers map these to
// HTTP statuses; anything else collapses to a generic 500.
var (
	// ErrInvalidCredentials covers both unknown email and wrong
	// password on signin. The two are never distinguished.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrRateLimited means the email has exhausted its reset-request
	// budget for the current window.
	ErrRateLimited = errors.New("too many password reset requests")
)

// ValidationError is a malformed-input failure, scoped to a field where
// that is safe to reveal.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConflictError is a duplicate username or email. Field-scoped:
// usernames are already public, so revealing which field collided is
// acceptable.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// TokenState classifies a reset token at validation time.
type TokenState string

const (
	TokenValid    TokenState = "valid"
	TokenNotFound TokenState = "not_found"
	TokenExpired  TokenState = "expired"
	TokenUsed     TokenState = "used"
)
