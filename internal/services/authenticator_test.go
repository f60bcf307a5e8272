package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeKeyValidator struct {
	key   *models.APIKey
	err   error
	calls int
}

func (f *fakeKeyValidator) ValidateKey(ctx context.Context, plainKey string) (*models.APIKey, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.key, nil
}

type recordedUsage struct {
	keyID     uuid.UUID
	endpoint  string
	method    string
	ip        string
	userAgent string
}

type fakeUsageRecorder struct {
	mu      sync.Mutex
	records []recordedUsage
}

func (f *fakeUsageRecorder) Record(keyID uuid.UUID, endpoint, method, ip, userAgent string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, recordedUsage{keyID, endpoint, method, ip, userAgent})
}

func newSessionJWT() *JWTService {
	return NewJWTService("test-secret-key", 15*time.Minute, 24*time.Hour)
}

func activeKey() *models.APIKey {
	return &models.APIKey{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		Scopes:   []string{models.ScopeRead},
		IsActive: true,
	}
}

func TestAuthenticate_APIKey(t *testing.T) {
	key := activeKey()
	keys := &fakeKeyValidator{key: key}
	usage := &fakeUsageRecorder{}
	auth := NewAuthenticator(keys, usage, newSessionJWT())

	plainKey, _, _ := GenerateAPIKey()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/urls", nil)
	req.Header.Set("Authorization", "Bearer "+plainKey)
	req.Header.Set("X-Forwarded-For", "203.0.113.9")
	req.Header.Set("User-Agent", "curl/8.5.0")

	identity, err := auth.Authenticate(req)

	require.NoError(t, err)
	assert.Equal(t, key.UserID, identity.UserID)
	require.NotNil(t, identity.Key)
	assert.Equal(t, key.ID, identity.Key.ID)
	assert.True(t, identity.IsAPIKey())
	assert.Equal(t, 1, keys.calls)

	require.Len(t, usage.records, 1)
	assert.Equal(t, recordedUsage{key.ID, "/api/v1/urls", "GET", "203.0.113.9", "curl/8.5.0"}, usage.records[0])
}

func TestAuthenticate_InvalidKeyDoesNotFallThrough(t *testing.T) {
	// A bearer value with the key scheme must resolve as a key or not at all,
	// even when a valid session cookie is also present.
	keys := &fakeKeyValidator{err: ErrAPIKeyInvalid}
	jwtSvc := newSessionJWT()
	auth := NewAuthenticator(keys, &fakeUsageRecorder{}, jwtSvc)

	pair, err := jwtSvc.GenerateTokenPair(uuid.New(), "user@example.com")
	require.NoError(t, err)

	plainKey, _, _ := GenerateAPIKey()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/urls", nil)
	req.Header.Set("Authorization", "Bearer "+plainKey)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: pair.AccessToken})

	_, err = auth.Authenticate(req)

	assert.ErrorIs(t, err, ErrAPIKeyInvalid)
	assert.Equal(t, 1, keys.calls)
}

func TestAuthenticate_MalformedKeyStillTreatedAsKey(t *testing.T) {
	keys := &fakeKeyValidator{err: ErrAPIKeyMalformed}
	auth := NewAuthenticator(keys, &fakeUsageRecorder{}, newSessionJWT())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/urls", nil)
	req.Header.Set("Authorization", "Bearer gup_not_a_real_key")

	_, err := auth.Authenticate(req)

	assert.ErrorIs(t, err, ErrAPIKeyMalformed)
	assert.Equal(t, 1, keys.calls)
}

func TestAuthenticate_SessionCookie(t *testing.T) {
	keys := &fakeKeyValidator{}
	jwtSvc := newSessionJWT()
	auth := NewAuthenticator(keys, &fakeUsageRecorder{}, jwtSvc)

	userID := uuid.New()
	pair, err := jwtSvc.GenerateTokenPair(userID, "user@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: pair.AccessToken})

	identity, err := auth.Authenticate(req)

	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
	assert.Equal(t, "user@example.com", identity.Email)
	assert.False(t, identity.IsAPIKey())
	// The key path never ran
	assert.Equal(t, 0, keys.calls)
}

func TestAuthenticate_BearerJWT(t *testing.T) {
	jwtSvc := newSessionJWT()
	auth := NewAuthenticator(&fakeKeyValidator{}, &fakeUsageRecorder{}, jwtSvc)

	userID := uuid.New()
	pair, err := jwtSvc.GenerateTokenPair(userID, "user@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)

	identity, err := auth.Authenticate(req)

	require.NoError(t, err)
	assert.Equal(t, userID, identity.UserID)
}

func TestAuthenticate_CookieWinsOverBearer(t *testing.T) {
	jwtSvc := newSessionJWT()
	auth := NewAuthenticator(&fakeKeyValidator{}, &fakeUsageRecorder{}, jwtSvc)

	cookieUser := uuid.New()
	cookiePair, err := jwtSvc.GenerateTokenPair(cookieUser, "cookie@example.com")
	require.NoError(t, err)
	bearerPair, err := jwtSvc.GenerateTokenPair(uuid.New(), "bearer@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookiePair.AccessToken})
	req.Header.Set("Authorization", "Bearer "+bearerPair.AccessToken)

	identity, err := auth.Authenticate(req)

	require.NoError(t, err)
	assert.Equal(t, cookieUser, identity.UserID)
}

func TestAuthenticate_NoCredentials(t *testing.T) {
	auth := NewAuthenticator(&fakeKeyValidator{}, &fakeUsageRecorder{}, newSessionJWT())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/urls", nil)

	_, err := auth.Authenticate(req)

	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestAuthenticate_BadSessionToken(t *testing.T) {
	auth := NewAuthenticator(&fakeKeyValidator{}, &fakeUsageRecorder{}, newSessionJWT())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/urls", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")

	_, err := auth.Authenticate(req)

	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded single", map[string]string{"X-Forwarded-For": "203.0.113.5"}, "203.0.113.5"},
		{"forwarded chain takes first", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1, 10.0.0.2"}, "203.0.113.5"},
		{"real ip fallback", map[string]string{"X-Real-IP": "198.51.100.4"}, "198.51.100.4"},
		{"forwarded beats real ip", map[string]string{"X-Forwarded-For": "203.0.113.5", "X-Real-IP": "198.51.100.4"}, "203.0.113.5"},
		{"no headers", nil, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}
