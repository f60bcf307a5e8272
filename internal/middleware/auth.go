package middleware

import (
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/models"
	"github.com/guplink/guplink-api/internal/services"
	"github.com/guplink/guplink-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	IdentityKey = "identity"
)

// RequestAuthenticator resolves a request to an identity, API key or session.
type RequestAuthenticator interface {
	Authenticate(r *http.Request) (*models.Identity, error)
}

// Auth resolves the caller's identity and stores it in the request context.
// Requests with no resolvable identity are rejected with 401. A failure to
// reach the credential store is not a caller problem and surfaces as 500,
// with the underlying error kept out of the response.
func Auth(authenticator RequestAuthenticator) drift.HandlerFunc {
	return func(c *drift.Context) {
		identity, err := authenticator.Authenticate(c.Request)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrAuthRequired):
				_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
			case isCredentialError(err):
				_ = c.JSON(http.StatusUnauthorized, dto.NewError("invalid or expired credentials"))
			default:
				log.Printf("authentication failed against credential store: %v", err)
				_ = c.JSON(http.StatusInternalServerError, dto.NewError("internal server error"))
			}
			c.Abort()
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// isCredentialError separates rejections the caller earned from infrastructure
// failures that must not read as a 401.
func isCredentialError(err error) bool {
	for _, known := range []error{
		services.ErrSessionInvalid,
		services.ErrAPIKeyMalformed,
		services.ErrAPIKeyInvalid,
		services.ErrAPIKeyRevoked,
		services.ErrAPIKeyExpired,
	} {
		if errors.Is(err, known) {
			return true
		}
	}
	return false
}

// RequireScope rejects API-key callers whose key does not carry the scope.
// Session callers always pass.
func RequireScope(scope string) drift.HandlerFunc {
	return func(c *drift.Context) {
		identity := GetIdentity(c)
		if identity == nil {
			_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
			c.Abort()
			return
		}

		if !services.CheckScope(identity, scope) {
			_ = c.JSON(http.StatusForbidden, dto.NewError("api key is missing required scope: "+scope))
			c.Abort()
			return
		}

		c.Next()
	}
}

func GetIdentity(c *drift.Context) *models.Identity {
	if v, ok := c.Get(IdentityKey); ok {
		if identity, ok := v.(*models.Identity); ok {
			return identity
		}
	}
	return nil
}

func GetUserID(c *drift.Context) uuid.UUID {
	if identity := GetIdentity(c); identity != nil {
		return identity.UserID
	}
	return uuid.Nil
}

func GetUserEmail(c *drift.Context) string {
	if identity := GetIdentity(c); identity != nil {
		return identity.Email
	}
	return ""
}
