package models

import (
	"time"

	"github.com/google/uuid"
)

// API key scopes. Admin acts as a wildcard covering read and write.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
	ScopeAdmin = "admin"
)

// MaxActiveAPIKeys is the per-user cap on keys with is_active = true.
const MaxActiveAPIKeys = 10

var ValidScopes = []string{ScopeRead, ScopeWrite, ScopeAdmin}

func IsValidScope(scope string) bool {
	for _, s := range ValidScopes {
		if s == scope {
			return true
		}
	}
	return false
}

type APIKey struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Name       string     `json:"name"`
	KeyHash    string     `json:"-"`
	KeyPrefix  string     `json:"key_prefix"`
	Scopes     []string   `json:"scopes"`
	IsActive   bool       `json:"is_active"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// HasScope reports whether the key grants the given scope, with admin
// covering everything.
func (k *APIKey) HasScope(scope string) bool {
	for _, s := range k.Scopes {
		if s == ScopeAdmin || s == scope {
			return true
		}
	}
	return false
}

type APIKeyUsage struct {
	ID        uuid.UUID `json:"id"`
	APIKeyID  uuid.UUID `json:"api_key_id"`
	Endpoint  string    `json:"endpoint"`
	Method    string    `json:"method"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}
