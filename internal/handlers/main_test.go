package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tweeter/backend/internal/auth"
	"tweeter/backend/internal/credentials"
	"tweeter/backend/internal/models"
)

// The handler tests drive a real credentials.Service over in-memory
// collaborators, so each test asserts the full HTTP contract of an
// endpoint rather than handler glue in isolation.

type stubAccounts struct {
	byID map[uuid.UUID]*models.Account
}

func newStubAccounts() *stubAccounts {
	return &stubAccounts{byID: make(map[uuid.UUID]*models.Account)}
}

func (s *stubAccounts) add(username, email, passwordHash string) *models.Account {
	account := &models.Account{ID: uuid.New(), Username: username, Email: email, PasswordHash: passwordHash}
	s.byID[account.ID] = account
	return account
}

func (s *stubAccounts) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	for _, account := range s.byID {
		if strings.EqualFold(account.Email, email) {
			return account, nil
		}
	}
	return nil, nil
}

func (s *stubAccounts) FindByID(_ context.Context, id uuid.UUID) (*models.Account, error) {
	return s.byID[id], nil
}

func (s *stubAccounts) Create(_ context.Context, account *models.Account) error {
	account.ID = uuid.New()
	s.byID[account.ID] = account
	return nil
}

func (s *stubAccounts) ExistsByUsername(_ context.Context, username string) (bool, error) {
	for _, account := range s.byID {
		if strings.EqualFold(account.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubAccounts) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	account, _ := s.FindByEmail(ctx, email)
	return account != nil, nil
}

type stubTokens struct {
	validateInfo credentials.TokenInfo
	consumeInfo  credentials.TokenInfo
	issued       int
}

func (s *stubTokens) Issue(_ context.Context, _ uuid.UUID) (string, time.Time, error) {
	s.issued++
	return "fresh-token", time.Now().Add(time.Hour), nil
}

func (s *stubTokens) Validate(_ context.Context, _ string) (credentials.TokenInfo, error) {
	return s.validateInfo, nil
}

func (s *stubTokens) Consume(_ context.Context, _, _ string) (credentials.TokenInfo, error) {
	return s.consumeInfo, nil
}

type stubLimiter struct {
	exceeded bool
	recorded []string
}

func (s *stubLimiter) CheckExceeded(_ context.Context, _ string) (bool, error) {
	return s.exceeded, nil
}

func (s *stubLimiter) Record(_ context.Context, email string) error {
	s.recorded = append(s.recorded, email)
	return nil
}

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (stubHasher) Verify(encoded, password string) bool { return encoded == "hashed:"+password }

type stubMailer struct {
	resetLinks []string
	notices    []string
}

func (s *stubMailer) SendResetLink(_ context.Context, email, _, _ string) error {
	s.resetLinks = append(s.resetLinks, email)
	return nil
}

func (s *stubMailer) SendPasswordChangedNotice(_ context.Context, email string) error {
	s.notices = append(s.notices, email)
	return nil
}

type fixture struct {
	router   *gin.Engine
	issuer   *auth.SessionIssuer
	accounts *stubAccounts
	tokens   *stubTokens
	limiter  *stubLimiter
	mailer   *stubMailer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	issuer, err := auth.NewSessionIssuer("handler-test-secret")
	require.NoError(t, err)

	f := &fixture{
		issuer:   issuer,
		accounts: newStubAccounts(),
		tokens:   &stubTokens{},
		limiter:  &stubLimiter{},
		mailer:   &stubMailer{},
	}
	svc := credentials.NewService(f.accounts, f.tokens, f.limiter, stubHasher{}, issuer, f.mailer, "https://app.example.com", zap.NewNop())
	h := New(svc, auth.CookieSettings{}, zap.NewNop())

	router := gin.New()
	router.Use(auth.SessionMiddleware(issuer))
	api := router.Group("/api/auth")
	{
		api.POST("/signup", h.SignupHandler)
		api.POST("/signin", h.SigninHandler)
		api.POST("/signout", h.SignoutHandler)
		api.GET("/me", h.MeHandler)
		api.POST("/forgot-password", h.ForgotPasswordHandler)
		api.GET("/verify-reset-token/:token", h.VerifyResetTokenHandler)
		api.POST("/reset-password", h.ResetPasswordHandler)
	}
	f.router = router
	return f
}

func (f *fixture) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}
