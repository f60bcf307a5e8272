package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/database"
	"github.com/guplink/guplink-api/internal/models"
	"github.com/jackc/pgx/v5"
)

var (
	ErrAPIKeyMalformed = errors.New("malformed api key")
	ErrAPIKeyInvalid   = errors.New("invalid api key")
	ErrAPIKeyRevoked   = errors.New("api key has been revoked")
	ErrAPIKeyExpired   = errors.New("api key has expired")
	ErrAPIKeyNotFound  = errors.New("api key not found")
	ErrAPIKeyLimit     = errors.New("active api key limit reached")
)

// Token shape: gup_<8 char prefix>_<32 char payload>, both segments drawn
// from the URL-safe base64 alphabet. The prefix segment is generated, never
// user-controlled, and safe to display; the payload is the secret.
const (
	apiKeyScheme     = "gup_"
	apiKeyPrefixLen  = 8
	apiKeyPayloadLen = 32
	apiKeyTotalLen   = len(apiKeyScheme) + apiKeyPrefixLen + 1 + apiKeyPayloadLen
)

// GenerateAPIKey produces a new secret token plus the hash and display prefix
// stored in its place. The plaintext is returned once and never persisted.
func GenerateAPIKey() (plainKey, keyHash, keyPrefix string) {
	randomBytes := make([]byte, 30)
	_, _ = rand.Read(randomBytes)
	encoded := base64.RawURLEncoding.EncodeToString(randomBytes)

	prefix := encoded[:apiKeyPrefixLen]
	payload := encoded[apiKeyPrefixLen : apiKeyPrefixLen+apiKeyPayloadLen]

	plainKey = apiKeyScheme + prefix + "_" + payload
	keyPrefix = apiKeyScheme + prefix + "..."
	keyHash = HashAPIKey(plainKey)

	return plainKey, keyHash, keyPrefix
}

// HashAPIKey is the lookup digest for a presented token. Deterministic so the
// stored hash can be matched exactly.
func HashAPIKey(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// LooksLikeAPIKey reports whether a bearer value should be treated as an API
// key attempt at all. Anything carrying the scheme prefix must succeed or
// fail as a key; it never falls through to session auth.
func LooksLikeAPIKey(token string) bool {
	return strings.HasPrefix(token, apiKeyScheme)
}

// IsValidKeyFormat is a pure structural check performed before any store
// lookup. The payload may itself contain '_' so segments are checked by
// position, not by splitting.
func IsValidKeyFormat(token string) bool {
	if len(token) != apiKeyTotalLen {
		return false
	}
	if !strings.HasPrefix(token, apiKeyScheme) {
		return false
	}
	prefixEnd := len(apiKeyScheme) + apiKeyPrefixLen
	if token[prefixEnd] != '_' {
		return false
	}
	return isKeyAlphabet(token[len(apiKeyScheme):prefixEnd]) &&
		isKeyAlphabet(token[prefixEnd+1:])
}

func isKeyAlphabet(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}

type APIKeyService struct {
	db *database.DB
}

func NewAPIKeyService(db *database.DB) *APIKeyService {
	return &APIKeyService{db: db}
}

// Create mints a key for a user. Scopes default to {read, write} when empty;
// a user may hold at most models.MaxActiveAPIKeys active keys.
func (s *APIKeyService) Create(ctx context.Context, userID uuid.UUID, name string, scopes []string, expiresAt *time.Time) (*models.APIKey, string, error) {
	if len(scopes) == 0 {
		scopes = []string{models.ScopeRead, models.ScopeWrite}
	}
	for _, scope := range scopes {
		if !models.IsValidScope(scope) {
			return nil, "", errors.New("invalid scope: " + scope)
		}
	}

	var active int
	err := s.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM api_keys WHERE user_id = $1 AND is_active = TRUE
	`, userID).Scan(&active)
	if err != nil {
		return nil, "", err
	}
	if active >= models.MaxActiveAPIKeys {
		return nil, "", ErrAPIKeyLimit
	}

	plainKey, keyHash, keyPrefix := GenerateAPIKey()

	var key models.APIKey
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO api_keys (user_id, name, key_hash, key_prefix, scopes, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, name, key_hash, key_prefix, scopes, is_active, expires_at, last_used_at, created_at, updated_at
	`, userID, name, keyHash, keyPrefix, scopes, expiresAt).Scan(
		&key.ID, &key.UserID, &key.Name, &key.KeyHash, &key.KeyPrefix,
		&key.Scopes, &key.IsActive, &key.ExpiresAt, &key.LastUsedAt,
		&key.CreatedAt, &key.UpdatedAt,
	)
	if err != nil {
		return nil, "", err
	}

	return &key, plainKey, nil
}

// List returns all of a user's keys, revoked ones included, newest first.
// Revoked keys stay visible for audit.
func (s *APIKeyService) List(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, user_id, name, key_hash, key_prefix, scopes, is_active, expires_at, last_used_at, created_at, updated_at
		FROM api_keys
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(
			&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.IsActive, &k.ExpiresAt, &k.LastUsedAt, &k.CreatedAt, &k.UpdatedAt,
		); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Update changes name, scopes and/or the active flag. Re-activating a key
// counts against the active-key cap like creating one.
func (s *APIKeyService) Update(ctx context.Context, keyID, userID uuid.UUID, name *string, scopes []string, isActive *bool) (*models.APIKey, error) {
	for _, scope := range scopes {
		if !models.IsValidScope(scope) {
			return nil, errors.New("invalid scope: " + scope)
		}
	}

	if isActive != nil && *isActive {
		var active int
		err := s.db.Pool.QueryRow(ctx, `
			SELECT COUNT(*) FROM api_keys
			WHERE user_id = $1 AND is_active = TRUE AND id != $2
		`, userID, keyID).Scan(&active)
		if err != nil {
			return nil, err
		}
		if active >= models.MaxActiveAPIKeys {
			return nil, ErrAPIKeyLimit
		}
	}

	var key models.APIKey
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE api_keys SET
			name = COALESCE($3, name),
			scopes = COALESCE($4, scopes),
			is_active = COALESCE($5, is_active),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, key_hash, key_prefix, scopes, is_active, expires_at, last_used_at, created_at, updated_at
	`, keyID, userID, name, scopes, isActive).Scan(
		&key.ID, &key.UserID, &key.Name, &key.KeyHash, &key.KeyPrefix,
		&key.Scopes, &key.IsActive, &key.ExpiresAt, &key.LastUsedAt,
		&key.CreatedAt, &key.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAPIKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// Revoke soft-deletes: the row stays for audit, the key stops validating.
func (s *APIKeyService) Revoke(ctx context.Context, keyID, userID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		UPDATE api_keys SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_active = TRUE
	`, keyID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

// Delete removes the key permanently, usage rows included (cascade).
func (s *APIKeyService) Delete(ctx context.Context, keyID, userID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM api_keys WHERE id = $1 AND user_id = $2
	`, keyID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

// ValidateKey resolves a presented token to its key record. Malformed tokens
// are rejected before any lookup. A past expiry invalidates the key even
// while is_active is still true.
func (s *APIKeyService) ValidateKey(ctx context.Context, plainKey string) (*models.APIKey, error) {
	if !IsValidKeyFormat(plainKey) {
		return nil, ErrAPIKeyMalformed
	}

	var key models.APIKey
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, name, key_hash, key_prefix, scopes, is_active, expires_at, last_used_at, created_at, updated_at
		FROM api_keys
		WHERE key_hash = $1
	`, HashAPIKey(plainKey)).Scan(
		&key.ID, &key.UserID, &key.Name, &key.KeyHash, &key.KeyPrefix,
		&key.Scopes, &key.IsActive, &key.ExpiresAt, &key.LastUsedAt,
		&key.CreatedAt, &key.UpdatedAt,
	)
	// Only a missing row means the credential is bad. Anything else is a
	// store failure and must not masquerade as one.
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAPIKeyInvalid
	}
	if err != nil {
		return nil, err
	}

	if key.ExpiresAt != nil && key.ExpiresAt.Before(time.Now()) {
		return nil, ErrAPIKeyExpired
	}
	if !key.IsActive {
		return nil, ErrAPIKeyRevoked
	}

	return &key, nil
}
