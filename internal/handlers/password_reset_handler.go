package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tweeter/backend/internal/credentials"
)

// forgotPasswordMessage is returned for every accepted forgot-password
// request. Whether the email maps to an account must not be inferable
// from the response.
const forgotPasswordMessage = "If your email is registered, you'll receive a password reset link"

type ForgotPasswordPayload struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPasswordHandler starts the reset flow.
func (h *Handler) ForgotPasswordHandler(c *gin.Context) {
	var payload ForgotPasswordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	if err := h.svc.ForgotPassword(c.Request.Context(), payload.Email); err != nil {
		h.respondServiceError(c, "forgot-password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": forgotPasswordMessage})
}

// VerifyResetTokenHandler classifies a token for the reset form,
// without consuming it. Invalid tokens still answer 200: the state in
// the body is the result, not a transport failure.
func (h *Handler) VerifyResetTokenHandler(c *gin.Context) {
	verification, err := h.svc.VerifyResetToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.respondServiceError(c, "verify-reset-token", err)
		return
	}

	if verification.State != credentials.TokenValid {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": string(verification.State),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"email": verification.Email,
	})
}

type ResetPasswordPayload struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ResetPasswordHandler consumes a reset token, applies the new
// password, and signs the account in. Expired and used tokens answer
// 410 with distinct reasons: after the click there is no enumeration
// risk left, and the form needs to know why the link died.
func (h *Handler) ResetPasswordHandler(c *gin.Context) {
	var payload ResetPasswordPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload: " + err.Error()})
		return
	}

	result, err := h.svc.ResetPassword(c.Request.Context(), payload.Token, payload.Password)
	if err != nil {
		h.respondServiceError(c, "reset-password", err)
		return
	}

	switch result.State {
	case credentials.TokenNotFound:
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "Reset token not found",
			"reason": string(credentials.TokenNotFound),
		})
	case credentials.TokenExpired:
		c.JSON(http.StatusGone, gin.H{
			"error":  "Reset token has expired",
			"reason": string(credentials.TokenExpired),
		})
	case credentials.TokenUsed:
		c.JSON(http.StatusGone, gin.H{
			"error":  "Reset token has already been used",
			"reason": string(credentials.TokenUsed),
		})
	default:
		h.setSessionCookie(c, result.SessionToken)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user":    result.Account.Public(),
		})
	}
}
