package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/models"
)

var (
	ErrAuthRequired   = errors.New("authentication required")
	ErrSessionInvalid = errors.New("invalid or expired session")
)

// SessionCookieName carries the access token for browser sessions.
const SessionCookieName = "gup_session"

// KeyValidator resolves a presented API key token to its record.
type KeyValidator interface {
	ValidateKey(ctx context.Context, plainKey string) (*models.APIKey, error)
}

// UsageRecorder is the fire-and-forget usage sink.
type UsageRecorder interface {
	Record(keyID uuid.UUID, endpoint, method, ip, userAgent string)
}

// AccessTokenValidator parses a session access token.
type AccessTokenValidator interface {
	ValidateAccessToken(token string) (*Claims, error)
}

// Authenticator is the single choke point turning a raw request into an
// Identity. Every protected handler goes through it via the auth middleware.
type Authenticator struct {
	keys  KeyValidator
	usage UsageRecorder
	jwt   AccessTokenValidator
}

func NewAuthenticator(keys KeyValidator, usage UsageRecorder, jwt AccessTokenValidator) *Authenticator {
	return &Authenticator{keys: keys, usage: usage, jwt: jwt}
}

// Authenticate resolves exactly one identity variant:
//
//  1. A bearer value carrying the key scheme is an API-key attempt and
//     nothing else; a malformed one fails as an invalid key rather than
//     falling through, so credential bugs stay visible.
//  2. Otherwise the session path runs: gup_session cookie first, then a
//     non-key bearer value, parsed as an access JWT.
//
// On API-key success, usage is recorded off the request path.
func (a *Authenticator) Authenticate(r *http.Request) (*models.Identity, error) {
	bearer := bearerToken(r)

	if bearer != "" && LooksLikeAPIKey(bearer) {
		key, err := a.keys.ValidateKey(r.Context(), bearer)
		if err != nil {
			return nil, err
		}
		if a.usage != nil {
			a.usage.Record(key.ID, r.URL.Path, r.Method, ClientIP(r), r.UserAgent())
		}
		return models.APIKeyIdentity(key), nil
	}

	token := ""
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		token = cookie.Value
	}
	if token == "" {
		token = bearer
	}
	if token == "" {
		return nil, ErrAuthRequired
	}

	claims, err := a.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, ErrSessionInvalid
	}

	return models.SessionIdentity(claims.UserID, claims.Email), nil
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// ClientIP derives the rate-limit/usage-log client identifier: first
// X-Forwarded-For entry, then X-Real-IP, then a literal "unknown". Header
// only, matching a deployment behind a trusted proxy.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	return "unknown"
}
