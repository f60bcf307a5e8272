package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/config"
	"github.com/guplink/guplink-api/internal/middleware"
	"github.com/guplink/guplink-api/internal/models"
	"github.com/guplink/guplink-api/internal/oauth"
	"github.com/guplink/guplink-api/internal/services"
	"github.com/guplink/guplink-api/pkg/dto"
	"github.com/guplink/guplink-api/tests/testutil"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupAuthTest(t *testing.T) (*testutil.MockUserService, *testutil.MockTokenService, *testutil.MockJWTService, *AuthHandler) {
	t.Helper()
	mockUserService := new(testutil.MockUserService)
	mockTokenService := new(testutil.MockTokenService)
	mockJWTService := new(testutil.MockJWTService)

	cfg := &config.Config{
		FrontendCallbackURL: "http://localhost:3000/auth/callback",
	}

	handler := &AuthHandler{
		cfg:          cfg,
		providers:    make(map[string]oauth.Provider),
		userService:  mockUserService,
		tokenService: mockTokenService,
		jwtService:   mockJWTService,
	}

	return mockUserService, mockTokenService, mockJWTService, handler
}

func TestAuthHandler_ExchangeCode_Success(t *testing.T) {
	mockUserService, mockTokenService, mockJWTService, handler := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{
		ID:       userID,
		Email:    "test@example.com",
		Name:     "Test User",
		Provider: "github",
	}

	tokenPair := &services.TokenPair{
		AccessToken:  "access-token-123",
		RefreshToken: "refresh-token-456",
		ExpiresIn:    3600,
	}

	authCode := "test-auth-code"
	handler.authCodes.Store(authCode, authCodeData{
		userID:    userID,
		expiresAt: time.Now().Add(30 * time.Second),
	})

	mockUserService.On("GetByID", mock.Anything, userID).Return(user, nil)
	mockJWTService.On("GenerateTokenPair", userID, "test@example.com").Return(tokenPair, nil)
	mockJWTService.On("RefreshExpiry").Return(7 * 24 * time.Hour)
	mockTokenService.On("StoreRefreshToken", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/exchange", handler.ExchangeCode)

	body := dto.ExchangeRequest{Code: authCode}
	jsonBody, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/auth/exchange", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TokenResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "access-token-123", response.AccessToken)
	assert.Equal(t, "refresh-token-456", response.RefreshToken)
	assert.Equal(t, int64(3600), response.ExpiresIn)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == services.SessionCookieName {
			session = c
		}
	}
	require.NotNil(t, session, "expected session cookie to be set")
	assert.Equal(t, "access-token-123", session.Value)
	assert.True(t, session.HttpOnly)

	mockUserService.AssertExpectations(t)
	mockJWTService.AssertExpectations(t)
	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_ExchangeCode_InvalidCode(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/exchange", handler.ExchangeCode)

	body := dto.ExchangeRequest{Code: "invalid-code"}
	jsonBody, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/auth/exchange", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	testutil.AssertErrorResponse(t, rec, http.StatusUnauthorized)
	assert.Contains(t, rec.Body.String(), "invalid or expired code")
}

func TestAuthHandler_ExchangeCode_ExpiredCode(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)

	userID := uuid.New()
	authCode := "expired-auth-code"

	handler.authCodes.Store(authCode, authCodeData{
		userID:    userID,
		expiresAt: time.Now().Add(-1 * time.Second),
	})

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/exchange", handler.ExchangeCode)

	body := dto.ExchangeRequest{Code: authCode}
	jsonBody, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/auth/exchange", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	testutil.AssertErrorResponse(t, rec, http.StatusUnauthorized)
	assert.Contains(t, rec.Body.String(), "code expired")
}

func TestAuthHandler_ExchangeCode_MissingCode(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/exchange", handler.ExchangeCode)

	body := dto.ExchangeRequest{Code: ""}
	jsonBody, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/auth/exchange", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	testutil.AssertErrorResponse(t, rec, http.StatusBadRequest)
	assert.Contains(t, rec.Body.String(), "validation failed")
}

func TestAuthHandler_Callback_RedirectsWithCode(t *testing.T) {
	mockUserService, _, _, handler := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{
		ID:       userID,
		Email:    "test@example.com",
		Name:     "Test User",
		Provider: "github",
	}
	userInfo := testutil.OAuthUserInfo("test@example.com", "Test User", "github", "12345")

	mockProvider := new(testutil.MockOAuthProvider)
	mockProvider.On("ExchangeCode", mock.Anything, "provider-code").Return(userInfo, nil)
	handler.providers["github"] = mockProvider

	mockUserService.On("FindOrCreateFromOAuth", mock.Anything, userInfo).Return(user, nil)

	state := "valid-state"
	handler.states.Store(state, stateData{expiresAt: time.Now().Add(10 * time.Minute)})

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Get("/auth/:provider/callback", handler.Callback)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?state="+state+"&code=provider-code", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)

	location := rec.Header().Get("Location")
	assert.Contains(t, location, "http://localhost:3000/auth/callback?code=")
	assert.NotContains(t, location, "error=")

	mockProvider.AssertExpectations(t)
	mockUserService.AssertExpectations(t)
}

func TestAuthHandler_Callback_InvalidState(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)

	mockProvider := new(testutil.MockOAuthProvider)
	handler.providers["github"] = mockProvider

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Get("/auth/:provider/callback", handler.Callback)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/callback?state=never-issued&code=x", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "error=")

	mockProvider.AssertNotCalled(t, "ExchangeCode")
}

func TestAuthHandler_RefreshToken_Success(t *testing.T) {
	mockUserService, mockTokenService, mockJWTService, handler := setupAuthTest(t)

	userID := uuid.New()
	user := &models.User{
		ID:       userID,
		Email:    "test@example.com",
		Name:     "Test User",
		Provider: "github",
	}

	oldRefreshToken := "old-refresh-token"
	newTokenPair := &services.TokenPair{
		AccessToken:  "new-access-token",
		RefreshToken: "new-refresh-token",
		ExpiresIn:    3600,
	}

	mockJWTService.On("ValidateRefreshToken", oldRefreshToken).Return(userID, nil)
	mockTokenService.On("ValidateRefreshToken", mock.Anything, mock.Anything).Return(userID, nil)
	mockUserService.On("GetByID", mock.Anything, userID).Return(user, nil)
	mockTokenService.On("RevokeRefreshToken", mock.Anything, mock.Anything).Return(nil)
	mockJWTService.On("GenerateTokenPair", userID, "test@example.com").Return(newTokenPair, nil)
	mockJWTService.On("RefreshExpiry").Return(7 * 24 * time.Hour)
	mockTokenService.On("StoreRefreshToken", mock.Anything, userID, mock.Anything, mock.Anything).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/refresh", handler.RefreshToken)

	body := dto.RefreshTokenRequest{RefreshToken: oldRefreshToken}
	jsonBody, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.TokenResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "new-access-token", response.AccessToken)
	assert.Equal(t, "new-refresh-token", response.RefreshToken)

	mockUserService.AssertExpectations(t)
	mockJWTService.AssertExpectations(t)
	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_RefreshToken_InvalidToken(t *testing.T) {
	_, _, mockJWTService, handler := setupAuthTest(t)

	mockJWTService.On("ValidateRefreshToken", "invalid-token").Return(uuid.Nil, errors.New("invalid token"))

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/refresh", handler.RefreshToken)

	body := dto.RefreshTokenRequest{RefreshToken: "invalid-token"}
	jsonBody, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	testutil.AssertErrorResponse(t, rec, http.StatusUnauthorized)
	assert.Contains(t, rec.Body.String(), "invalid refresh token")

	mockJWTService.AssertExpectations(t)
}

func TestAuthHandler_RefreshToken_NotStored(t *testing.T) {
	_, mockTokenService, mockJWTService, handler := setupAuthTest(t)

	userID := uuid.New()
	mockJWTService.On("ValidateRefreshToken", "revoked-token").Return(userID, nil)
	mockTokenService.On("ValidateRefreshToken", mock.Anything, mock.Anything).
		Return(uuid.Nil, errors.New("not found"))

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/refresh", handler.RefreshToken)

	body := dto.RefreshTokenRequest{RefreshToken: "revoked-token"}
	jsonBody, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	testutil.AssertErrorResponse(t, rec, http.StatusUnauthorized)
	assert.Contains(t, rec.Body.String(), "refresh token not found or expired")
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	_, mockTokenService, _, handler := setupAuthTest(t)

	mockTokenService.On("RevokeRefreshToken", mock.Anything, mock.Anything).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/logout", handler.Logout)

	body := dto.RefreshTokenRequest{RefreshToken: "some-refresh-token"}
	jsonBody, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")

	var session *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == services.SessionCookieName {
			session = c
		}
	}
	require.NotNil(t, session, "expected session cookie to be cleared")
	assert.Empty(t, session.Value)
	assert.Negative(t, session.MaxAge)

	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_Logout_EmptyToken(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/logout", handler.Logout)

	body := dto.RefreshTokenRequest{RefreshToken: ""}
	jsonBody, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	// Logout is idempotent even without a refresh token.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "logged out")
}

func TestAuthHandler_LogoutAll_Success(t *testing.T) {
	_, mockTokenService, _, handler := setupAuthTest(t)

	userID := uuid.New()
	email := "test@example.com"

	mockTokenService.On("RevokeAllUserTokens", mock.Anything, userID).Return(nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(testutil.TestAuthenticator()))
	app.Post("/auth/logout-all", handler.LogoutAll)

	token := testutil.GenerateTestToken(t, userID, email)
	req := httptest.NewRequest(http.MethodPost, "/auth/logout-all", nil)
	req.Header.Set("Authorization", testutil.AuthHeader(token))
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "all sessions logged out")

	mockTokenService.AssertExpectations(t)
}

func TestAuthHandler_LogoutAll_NotAuthenticated(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(testutil.TestAuthenticator()))
	app.Post("/auth/logout-all", handler.LogoutAll)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout-all", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	testutil.AssertErrorResponse(t, rec, http.StatusUnauthorized)
}

func TestAuthHandler_GetConsentURL_UnsupportedProvider(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Get("/auth/:provider/consent", handler.GetConsentURL)

	req := httptest.NewRequest(http.MethodGet, "/auth/unsupported/consent", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	testutil.AssertErrorResponse(t, rec, http.StatusBadRequest)
	assert.Contains(t, rec.Body.String(), "unsupported provider")
}

func TestAuthHandler_GetConsentURL_Success(t *testing.T) {
	_, _, _, handler := setupAuthTest(t)

	mockProvider := new(testutil.MockOAuthProvider)
	mockProvider.On("GetConsentURL", mock.AnythingOfType("string")).Return("https://provider.com/auth?state=abc")
	handler.providers["github"] = mockProvider

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Get("/auth/:provider/consent", handler.GetConsentURL)

	req := httptest.NewRequest(http.MethodGet, "/auth/github/consent", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.ConsentURLResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Contains(t, response.URL, "https://provider.com/auth")

	mockProvider.AssertExpectations(t)
}
