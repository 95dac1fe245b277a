package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextAccountIDKey is where middleware stores the authenticated
// account id in the gin context.
const ContextAccountIDKey = "accountID"

// SessionMiddleware resolves the session cookie and, when it verifies,
// stores the account id in the context. A missing or invalid cookie is
// not rejected here: the request proceeds anonymously and handlers that
// need an identity decide for themselves. Verification failures never
// surface as errors.
func SessionMiddleware(issuer *SessionIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err == nil && token != "" {
			if accountID, ok := issuer.Verify(token); ok {
				c.Set(ContextAccountIDKey, accountID)
			}
		}
		c.Next()
	}
}

// RequireSession aborts with 401 unless SessionMiddleware resolved an
// authenticated account earlier in the chain.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := AccountIDFromContext(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Next()
	}
}

// AccountIDFromContext returns the authenticated account id, if any.
func AccountIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextAccountIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
