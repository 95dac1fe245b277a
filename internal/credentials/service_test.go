package credentials

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tweeter/backend/internal/models"
)

// In-memory collaborators. Each fake records enough of what happened
// for the flow tests to assert ordering and side effects.

type fakeAccountStore struct {
	accounts  map[uuid.UUID]*models.Account
	createErr error
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[uuid.UUID]*models.Account)}
}

func (f *fakeAccountStore) add(username, email, passwordHash string) *models.Account {
	account := &models.Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}
	f.accounts[account.ID] = account
	return account
}

func (f *fakeAccountStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, account := range f.accounts {
		if strings.EqualFold(account.Email, email) {
			return account, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountStore) FindByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	return f.accounts[id], nil
}

func (f *fakeAccountStore) Create(_ context.Context, account *models.Account) error {
	if f.createErr != nil {
		return f.createErr
	}
	account.ID = uuid.New()
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeAccountStore) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, account := range f.accounts {
		if strings.EqualFold(account.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccountStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	account, _ := f.FindByEmail(context.Background(), email)
	return account != nil, nil
}

type fakeTokenStore struct {
	issuedFor   []uuid.UUID
	plaintext   string
	consumeInfo TokenInfo
	consumedPw  string
	validate    TokenInfo
}

func (f *fakeTokenStore) Issue(_ context.Context, accountID uuid.UUID) (string, time.Time, error) {
	f.issuedFor = append(f.issuedFor, accountID)
	if f.plaintext == "" {
		f.plaintext = "issued-token"
	}
	return f.plaintext, time.Now().Add(ResetTokenLifetime), nil
}

func (f *fakeTokenStore) Validate(_ context.Context, _ string) (TokenInfo, error) {
	return f.validate, nil
}

func (f *fakeTokenStore) Consume(_ context.Context, _, newPasswordHash string) (TokenInfo, error) {
	f.consumedPw = newPasswordHash
	return f.consumeInfo, nil
}

type fakeRateLimiter struct {
	exceeded bool
	events   []string
}

func (f *fakeRateLimiter) CheckExceeded(_ context.Context, _ string) (bool, error) {
	f.events = append(f.events, "check")
	return f.exceeded, nil
}

func (f *fakeRateLimiter) Record(_ context.Context, email string) error {
	f.events = append(f.events, "record:"+email)
	return nil
}

// fakeHasher makes hashes legible to assertions.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Verify(encoded, password string) bool { return encoded == "hashed:"+password }

type fakeSessionIssuer struct{}

func (fakeSessionIssuer) Issue(accountID uuid.UUID) (string, error) {
	return "session-" + accountID.String(), nil
}

type fakeMailer struct {
	resetLinks    []string // "email|token|baseURL"
	notices       []string
	resetLinkErr  error
	noticeFailErr error
}

func (f *fakeMailer) SendResetLink(_ context.Context, email, token, baseURL string) error {
	if f.resetLinkErr != nil {
		return f.resetLinkErr
	}
	f.resetLinks = append(f.resetLinks, email+"|"+token+"|"+baseURL)
	return nil
}

func (f *fakeMailer) SendPasswordChangedNotice(_ context.Context, email string) error {
	if f.noticeFailErr != nil {
		return f.noticeFailErr
	}
	f.notices = append(f.notices, email)
	return nil
}

type serviceFixture struct {
	svc      *Service
	accounts *fakeAccountStore
	tokens   *fakeTokenStore
	limiter  *fakeRateLimiter
	mailer   *fakeMailer
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		accounts: newFakeAccountStore(),
		tokens:   &fakeTokenStore{},
		limiter:  &fakeRateLimiter{},
		mailer:   &fakeMailer{},
	}
	f.svc = NewService(f.accounts, f.tokens, f.limiter, fakeHasher{}, fakeSessionIssuer{}, f.mailer, "https://app.example.com", zap.NewNop())
	return f
}

func TestService_SignupThenSignin(t *testing.T) {
	f := newServiceFixture()

	account, sessionToken, err := f.svc.Signup(context.Background(), SignupInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "longenough",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, "alice@example.com", account.Email, "email is normalized")
	assert.Equal(t, "session-"+account.ID.String(), sessionToken)
	assert.Equal(t, "hashed:longenough", account.PasswordHash)

	signedIn, _, err := f.svc.Signin(context.Background(), "alice@example.com", "longenough")
	require.NoError(t, err)
	assert.Equal(t, account.ID, signedIn.ID)
}

func TestService_Signup_Validation(t *testing.T) {
	f := newServiceFixture()

	cases := []struct {
		name  string
		input SignupInput
		field string
	}{
		{"short username", SignupInput{Username: "ab", Email: "a@b.com", Password: "longenough"}, "username"},
		{"illegal characters", SignupInput{Username: "a l i c e", Email: "a@b.com", Password: "longenough"}, "username"},
		{"short password", SignupInput{Username: "alice", Email: "a@b.com", Password: "short"}, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := f.svc.Signup(context.Background(), tc.input)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestService_Signup_Conflicts(t *testing.T) {
	f := newServiceFixture()
	f.accounts.add("alice", "alice@example.com", "hashed:pw")

	_, _, err := f.svc.Signup(context.Background(), SignupInput{Username: "Alice", Email: "new@example.com", Password: "longenough"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "username", conflict.Field)

	_, _, err = f.svc.Signup(context.Background(), SignupInput{Username: "bob", Email: "ALICE@example.com", Password: "longenough"})
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)
}

func TestService_Signup_DuplicateKeyRace(t *testing.T) {
	// Both concurrent signups pass the existence checks; the unique
	// index rejects the second insert and that still reads as conflict.
	f := newServiceFixture()
	f.accounts.createErr = gorm.ErrDuplicatedKey

	_, _, err := f.svc.Signup(context.Background(), SignupInput{Username: "alice", Email: "a@b.com", Password: "longenough"})
	var conflict *ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestService_Signin_GenericFailure(t *testing.T) {
	f := newServiceFixture()
	f.accounts.add("alice", "alice@example.com", "hashed:rightpassword")

	// Unknown email and wrong password must be indistinguishable.
	_, _, unknownErr := f.svc.Signin(context.Background(), "nobody@example.com", "rightpassword")
	_, _, wrongErr := f.svc.Signin(context.Background(), "alice@example.com", "wrongpassword")

	assert.ErrorIs(t, unknownErr, ErrInvalidCredentials)
	assert.ErrorIs(t, wrongErr, ErrInvalidCredentials)
	assert.Equal(t, unknownErr.Error(), wrongErr.Error())
}

func TestService_ForgotPassword_KnownEmail(t *testing.T) {
	f := newServiceFixture()
	account := f.accounts.add("alice", "alice@example.com", "hashed:pw")

	err := f.svc.ForgotPassword(context.Background(), " Alice@Example.com ")
	require.NoError(t, err)

	require.Len(t, f.tokens.issuedFor, 1)
	assert.Equal(t, account.ID, f.tokens.issuedFor[0])
	require.Len(t, f.mailer.resetLinks, 1)
	assert.Equal(t, "alice@example.com|issued-token|https://app.example.com", f.mailer.resetLinks[0])
	// The limit is checked before the attempt is recorded.
	assert.Equal(t, []string{"check", "record:alice@example.com"}, f.limiter.events)
}

func TestService_ForgotPassword_UnknownEmailStillRecorded(t *testing.T) {
	f := newServiceFixture()

	err := f.svc.ForgotPassword(context.Background(), "nobody@example.com")
	require.NoError(t, err, "unknown email must not be observable")

	assert.Empty(t, f.tokens.issuedFor)
	assert.Empty(t, f.mailer.resetLinks)
	assert.Equal(t, []string{"check", "record:nobody@example.com"}, f.limiter.events)
}

func TestService_ForgotPassword_RateLimited(t *testing.T) {
	f := newServiceFixture()
	f.accounts.add("alice", "alice@example.com", "hashed:pw")
	f.limiter.exceeded = true

	err := f.svc.ForgotPassword(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Empty(t, f.tokens.issuedFor)
	assert.Equal(t, []string{"check"}, f.limiter.events, "rejected request is not recorded")
}

func TestService_ForgotPassword_MailFailureSurfaces(t *testing.T) {
	f := newServiceFixture()
	f.accounts.add("alice", "alice@example.com", "hashed:pw")
	f.mailer.resetLinkErr = assert.AnError

	err := f.svc.ForgotPassword(context.Background(), "alice@example.com")
	assert.Error(t, err)
}

func TestService_VerifyResetToken(t *testing.T) {
	f := newServiceFixture()
	account := f.accounts.add("alice", "alice@example.com", "hashed:pw")

	f.tokens.validate = TokenInfo{State: TokenValid, AccountID: account.ID}
	got, err := f.svc.VerifyResetToken(context.Background(), "some-token")
	require.NoError(t, err)
	assert.Equal(t, TokenValid, got.State)
	assert.Equal(t, "alice@example.com", got.Email)

	f.tokens.validate = TokenInfo{State: TokenExpired, AccountID: account.ID}
	got, err = f.svc.VerifyResetToken(context.Background(), "some-token")
	require.NoError(t, err)
	assert.Equal(t, TokenExpired, got.State)
	assert.Empty(t, got.Email)

	// Valid token whose account has since been deleted reads not-found.
	f.tokens.validate = TokenInfo{State: TokenValid, AccountID: uuid.New()}
	got, err = f.svc.VerifyResetToken(context.Background(), "some-token")
	require.NoError(t, err)
	assert.Equal(t, TokenNotFound, got.State)
}

func TestService_ResetPassword_Valid(t *testing.T) {
	f := newServiceFixture()
	account := f.accounts.add("alice", "alice@example.com", "hashed:old")
	f.tokens.consumeInfo = TokenInfo{State: TokenValid, AccountID: account.ID}

	result, err := f.svc.ResetPassword(context.Background(), "the-token", "brand-new-password")
	require.NoError(t, err)
	assert.Equal(t, TokenValid, result.State)
	assert.Equal(t, account.ID, result.Account.ID)
	assert.Equal(t, "session-"+account.ID.String(), result.SessionToken)
	assert.Equal(t, "hashed:brand-new-password", f.tokens.consumedPw)
	assert.Equal(t, []string{"alice@example.com"}, f.mailer.notices)
}

func TestService_ResetPassword_NoticeFailureIsSwallowed(t *testing.T) {
	f := newServiceFixture()
	account := f.accounts.add("alice", "alice@example.com", "hashed:old")
	f.tokens.consumeInfo = TokenInfo{State: TokenValid, AccountID: account.ID}
	f.mailer.noticeFailErr = assert.AnError

	result, err := f.svc.ResetPassword(context.Background(), "the-token", "brand-new-password")
	require.NoError(t, err)
	assert.Equal(t, TokenValid, result.State)
	assert.NotEmpty(t, result.SessionToken)
}

func TestService_ResetPassword_TerminalStates(t *testing.T) {
	for _, state := range []TokenState{TokenNotFound, TokenExpired, TokenUsed} {
		t.Run(string(state), func(t *testing.T) {
			f := newServiceFixture()
			f.tokens.consumeInfo = TokenInfo{State: state}

			result, err := f.svc.ResetPassword(context.Background(), "the-token", "brand-new-password")
			require.NoError(t, err)
			assert.Equal(t, state, result.State)
			assert.Nil(t, result.Account)
			assert.Empty(t, result.SessionToken)
			assert.Empty(t, f.mailer.notices)
		})
	}
}

func TestService_ResetPassword_ShortPassword(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.ResetPassword(context.Background(), "the-token", "short")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)
	assert.Empty(t, f.tokens.consumedPw, "nothing is consumed on invalid input")
}
