package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tweeter/backend/internal/auth"
	"tweeter/backend/internal/credentials"
)

type SignupPayload struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignupHandler creates an account and opens its first session.
func (h *Handler) SignupHandler(c *gin.Context) {
	var payload SignupPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	account, token, err := h.svc.Signup(c.Request.Context(), credentials.SignupInput{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		h.respondServiceError(c, "signup", err)
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{"user": account.Public()})
}

type SigninPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SigninHandler authenticates an existing account.
func (h *Handler) SigninHandler(c *gin.Context) {
	var payload SigninPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	account, token, err := h.svc.Signin(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		h.respondServiceError(c, "signin", err)
		return
	}

	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"user": account.Public()})
}

// SignoutHandler clears the session cookie. There is nothing to revoke
// server-side; the cleared cookie is the whole operation.
func (h *Handler) SignoutHandler(c *gin.Context) {
	c.Header("Set-Cookie", auth.ClearSessionCookie(h.cookies))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MeHandler returns the authenticated account, or a null user for
// anonymous requests. A missing or invalid session is not an error
// here; the front end renders the signed-out state from the null.
func (h *Handler) MeHandler(c *gin.Context) {
	accountID, ok := auth.AccountIDFromContext(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}

	account, err := h.svc.CurrentAccount(c.Request.Context(), accountID)
	if err != nil {
		h.log.Error("Failed to load current account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if account == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": account.Public()})
}
