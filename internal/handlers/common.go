package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tweeter/backend/internal/auth"
	"tweeter/backend/internal/credentials"
)

// Handler serves the credential endpoints. Dependencies arrive through
// the constructor; there is no package-level state.
type Handler struct {
	svc     *credentials.Service
	cookies auth.CookieSettings
	log     *zap.Logger
}

func New(svc *credentials.Service, cookies auth.CookieSettings, log *zap.Logger) *Handler {
	return &Handler{svc: svc, cookies: cookies, log: log}
}

// respondServiceError maps the credential error taxonomy onto HTTP
// statuses. Anything unrecognized is a storage or internal failure: it
// gets logged and collapsed to a generic 500, never surfaced verbatim.
func (h *Handler) respondServiceError(c *gin.Context, op string, err error) {
	var validationErr *credentials.ValidationError
	var conflictErr *credentials.ConflictError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{
			"error": conflictErr.Message,
			"field": conflictErr.Field,
		})
	case errors.Is(err, credentials.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, credentials.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "Too many password reset requests",
			"message": "Please wait before requesting another reset",
		})
	default:
		h.log.Error("Internal error", zap.String("op", op), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// setSessionCookie installs a session token on the response.
func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.Header("Set-Cookie", auth.SessionCookie(token, h.cookies))
}
