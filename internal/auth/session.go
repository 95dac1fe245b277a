package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionLifetime is how long an issued session credential stays valid.
const SessionLifetime = 30 * 24 * time.Hour

// SessionClaims is the payload signed into a session token.
type SessionClaims struct {
	AccountID uuid.UUID `json:"account_id"`
	jwt.RegisteredClaims
}

// SessionIssuer mints and verifies signed, self-contained session
// credentials. Possession of a validly-signed, non-expired token is the
// session; nothing is stored server-side.
type SessionIssuer struct {
	secret   []byte
	lifetime time.Duration
}

// NewSessionIssuer builds an issuer around the signing secret.
func NewSessionIssuer(secret string) (*SessionIssuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("session signing secret must not be empty")
	}
	return &SessionIssuer{secret: []byte(secret), lifetime: SessionLifetime}, nil
}

// Issue signs a new session token for the account.
func (i *SessionIssuer) Issue(accountID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &SessionClaims{
		AccountID: accountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime)),
			Issuer:    "tweeter",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("error signing session token: %w", err)
	}
	return signed, nil
}

// Verify checks the token's signature and expiry and returns the
// account id it was issued for. Invalid, tampered, malformed, or
// expired tokens are a routine outcome, not an error: callers get
// (uuid.Nil, false) and must treat the request as unauthenticated.
func (i *SessionIssuer) Verify(tokenString string) (uuid.UUID, bool) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, false
	}
	if claims.AccountID == uuid.Nil {
		return uuid.Nil, false
	}
	return claims.AccountID, true
}
