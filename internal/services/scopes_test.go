package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func keyIdentity(userID uuid.UUID, scopes ...string) *models.Identity {
	return models.APIKeyIdentity(&models.APIKey{
		ID:       uuid.New(),
		UserID:   userID,
		Scopes:   scopes,
		IsActive: true,
	})
}

func TestCheckScope(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name     string
		identity *models.Identity
		scope    string
		want     bool
	}{
		{"nil identity", nil, models.ScopeRead, false},
		{"session passes read", models.SessionIdentity(userID, "u@example.com"), models.ScopeRead, true},
		{"session passes admin", models.SessionIdentity(userID, "u@example.com"), models.ScopeAdmin, true},
		{"key with scope", keyIdentity(userID, models.ScopeRead), models.ScopeRead, true},
		{"key without scope", keyIdentity(userID, models.ScopeRead), models.ScopeWrite, false},
		{"key with no scopes", keyIdentity(userID), models.ScopeRead, false},
		{"admin grants read", keyIdentity(userID, models.ScopeAdmin), models.ScopeRead, true},
		{"admin grants write", keyIdentity(userID, models.ScopeAdmin), models.ScopeWrite, true},
		{"admin grants admin", keyIdentity(userID, models.ScopeAdmin), models.ScopeAdmin, true},
		{"read+write denies admin", keyIdentity(userID, models.ScopeRead, models.ScopeWrite), models.ScopeAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckScope(tt.identity, tt.scope))
		})
	}
}
