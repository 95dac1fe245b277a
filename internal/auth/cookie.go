package auth

import (
	"fmt"
	"strings"
)

// SessionCookieName is the cookie that carries the session token.
const SessionCookieName = "auth_token"

// cookieMaxAge matches SessionLifetime, in seconds.
const cookieMaxAge = 30 * 24 * 60 * 60

// CookieSettings selects which cookie attribute set gets rendered.
type CookieSettings struct {
	// Domain is only emitted in production; development cookies are
	// host-only so a split-origin front end can submit them.
	Domain     string
	Production bool
}

// SessionCookie renders the Set-Cookie value that installs a session
// token. Pure function of (token, settings).
//
// Production uses Domain + SameSite=Lax + Secure. Development omits the
// Domain attribute and uses SameSite=None with Secure even over plain
// HTTP: browsers accept that combination for loopback addresses, and it
// is required for cross-site submission from the dev front end.
func SessionCookie(token string, settings CookieSettings) string {
	return renderCookie(token, fmt.Sprintf("Max-Age=%d", cookieMaxAge), settings)
}

// ClearSessionCookie renders the Set-Cookie value that destroys a
// session: the same attribute set with an empty value and Max-Age=0, so
// clients recognize the same cookie being cleared.
func ClearSessionCookie(settings CookieSettings) string {
	return renderCookie("", "Max-Age=0", settings)
}

func renderCookie(value, maxAge string, settings CookieSettings) string {
	attributes := []string{
		SessionCookieName + "=" + value,
		maxAge,
		"Path=/",
		"HttpOnly",
	}

	if settings.Production {
		attributes = append(attributes,
			"Domain="+settings.Domain,
			"SameSite=Lax",
			"Secure",
		)
	} else {
		attributes = append(attributes,
			"SameSite=None",
			"Secure",
		)
	}

	return strings.Join(attributes, "; ")
}
