package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/database"
	"github.com/guplink/guplink-api/internal/models"
	"github.com/guplink/guplink-api/internal/oauth"
	"github.com/guplink/guplink-api/internal/services"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:      fmt.Sprintf("user%d@example.com", f.counter),
		Name:       fmt.Sprintf("Test User %d", f.counter),
		Provider:   "github",
		ProviderID: fmt.Sprintf("provider-%d", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, avatar_url, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, email, name, avatar_url, provider, provider_id, created_at, updated_at
	`, user.Email, user.Name, user.AvatarURL, user.Provider, user.ProviderID).Scan(
		&user.ID, &user.Email, &user.Name, &user.AvatarURL,
		&user.Provider, &user.ProviderID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// WithProvider sets the user's OAuth provider
func WithProvider(provider, providerID string) UserOption {
	return func(u *models.User) {
		u.Provider = provider
		u.ProviderID = providerID
	}
}

// CreateURL creates a test short URL owned by the given user
func (f *Fixtures) CreateURL(t *testing.T, owner *models.User, opts ...URLOption) *models.URL {
	t.Helper()
	f.counter++

	u := &models.URL{
		UserID:      owner.ID,
		ShortCode:   fmt.Sprintf("code%d", f.counter),
		OriginalURL: fmt.Sprintf("https://example.com/page-%d", f.counter),
		IsActive:    true,
	}

	for _, opt := range opts {
		opt(u)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO urls (user_id, short_code, original_url, title, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, short_code, original_url, title, is_active, created_at, updated_at
	`, u.UserID, u.ShortCode, u.OriginalURL, u.Title, u.IsActive).Scan(
		&u.ID, &u.UserID, &u.ShortCode, &u.OriginalURL,
		&u.Title, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create url: %v", err)
	}

	return u
}

// URLOption configures a test URL
type URLOption func(*models.URL)

// WithShortCode sets the URL's short code
func WithShortCode(code string) URLOption {
	return func(u *models.URL) {
		u.ShortCode = code
	}
}

// WithOriginalURL sets the URL's destination
func WithOriginalURL(target string) URLOption {
	return func(u *models.URL) {
		u.OriginalURL = target
	}
}

// WithTitle sets the URL's title
func WithTitle(title string) URLOption {
	return func(u *models.URL) {
		u.Title = &title
	}
}

// Inactive marks the URL as disabled
func Inactive() URLOption {
	return func(u *models.URL) {
		u.IsActive = false
	}
}

// CreateAPIKey creates a test API key and returns both the record and the
// plaintext token that authenticates as it
func (f *Fixtures) CreateAPIKey(t *testing.T, owner *models.User, scopes []string) (*models.APIKey, string) {
	t.Helper()
	f.counter++

	plainKey, keyHash, keyPrefix := services.GenerateAPIKey()

	key := &models.APIKey{
		UserID: owner.ID,
		Name:   fmt.Sprintf("Test Key %d", f.counter),
		Scopes: scopes,
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO api_keys (user_id, name, key_hash, key_prefix, scopes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, name, key_hash, key_prefix, scopes, is_active, expires_at, last_used_at, created_at, updated_at
	`, key.UserID, key.Name, keyHash, keyPrefix, scopes).Scan(
		&key.ID, &key.UserID, &key.Name, &key.KeyHash, &key.KeyPrefix,
		&key.Scopes, &key.IsActive, &key.ExpiresAt, &key.LastUsedAt,
		&key.CreatedAt, &key.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create api key: %v", err)
	}

	return key, plainKey
}

// CreateClick inserts a click row for the given URL
func (f *Fixtures) CreateClick(t *testing.T, url *models.URL, clickedAt time.Time, opts ...ClickOption) {
	t.Helper()

	click := &models.ClickEvent{
		URLID:     url.ID,
		ClickedAt: clickedAt,
		Country:   "US",
		Browser:   "Chrome",
		Device:    models.DeviceDesktop,
	}

	for _, opt := range opts {
		opt(click)
	}

	ctx := context.Background()
	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO clicks (url_id, clicked_at, country, browser, device, referrer_type, referrer_domain, referrer_source, language, is_bot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, click.URLID, click.ClickedAt, click.Country, click.Browser, click.Device,
		click.ReferrerType, click.ReferrerDomain, click.ReferrerSource,
		click.Language, click.IsBot)
	if err != nil {
		t.Fatalf("failed to create click: %v", err)
	}
}

// ClickOption configures a test click event
type ClickOption func(*models.ClickEvent)

// FromCountry sets the click's country
func FromCountry(country string) ClickOption {
	return func(c *models.ClickEvent) {
		c.Country = country
	}
}

// FromDevice sets the click's device class
func FromDevice(device string) ClickOption {
	return func(c *models.ClickEvent) {
		c.Device = device
	}
}

// AsBot marks the click as bot traffic
func AsBot() ClickOption {
	return func(c *models.ClickEvent) {
		c.IsBot = true
	}
}

// CreateRefreshToken creates a test refresh token
func (f *Fixtures) CreateRefreshToken(t *testing.T, userID uuid.UUID, tokenHash string, expiresAt time.Time) {
	t.Helper()
	ctx := context.Background()

	_, err := f.db.Pool.Exec(ctx, `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, userID, tokenHash, expiresAt)
	if err != nil {
		t.Fatalf("failed to create refresh token: %v", err)
	}
}

// OAuthUserInfo creates test OAuth user info
func OAuthUserInfo(email, name, provider, id string) *oauth.UserInfo {
	return &oauth.UserInfo{
		Email:     email,
		Name:      name,
		AvatarURL: "https://example.com/avatar.png",
		ID:        id,
		Provider:  provider,
	}
}
