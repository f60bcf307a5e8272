package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/config"
	"github.com/guplink/guplink-api/internal/middleware"
	"github.com/guplink/guplink-api/internal/oauth"
	"github.com/guplink/guplink-api/internal/services"
	"github.com/guplink/guplink-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type AuthHandler struct {
	cfg          *config.Config
	providers    map[string]oauth.Provider
	userService  UserServiceInterface
	tokenService TokenServiceInterface
	jwtService   JWTServiceInterface
	states       sync.Map
	authCodes    sync.Map
}

type stateData struct {
	expiresAt time.Time
}

type authCodeData struct {
	userID    uuid.UUID
	expiresAt time.Time
}

func NewAuthHandler(
	cfg *config.Config,
	userService UserServiceInterface,
	tokenService TokenServiceInterface,
	jwtService JWTServiceInterface,
) *AuthHandler {
	h := &AuthHandler{
		cfg:          cfg,
		providers:    make(map[string]oauth.Provider),
		userService:  userService,
		tokenService: tokenService,
		jwtService:   jwtService,
	}

	if cfg.GitHub.ClientID != "" {
		h.providers["github"] = oauth.NewGitHubProvider(cfg.GitHub)
	}
	if cfg.Google.ClientID != "" {
		h.providers["google"] = oauth.NewGoogleProvider(cfg.Google)
	}

	go h.cleanupStates()

	return h
}

func (h *AuthHandler) cleanupStates() {
	ticker := time.NewTicker(1 * time.Minute)
	for range ticker.C {
		now := time.Now()
		h.states.Range(func(key, value interface{}) bool {
			if sd, ok := value.(stateData); ok && now.After(sd.expiresAt) {
				h.states.Delete(key)
			}
			return true
		})
		h.authCodes.Range(func(key, value interface{}) bool {
			if acd, ok := value.(authCodeData); ok && now.After(acd.expiresAt) {
				h.authCodes.Delete(key)
			}
			return true
		})
	}
}

func (h *AuthHandler) GetConsentURL(c *drift.Context) {
	provider := c.Param("provider")

	p, ok := h.providers[provider]
	if !ok {
		_ = c.JSON(http.StatusBadRequest, dto.NewError("unsupported provider: "+provider))
		return
	}

	state, err := oauth.GenerateState()
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to generate state"))
		return
	}

	h.states.Store(state, stateData{expiresAt: time.Now().Add(10 * time.Minute)})

	_ = c.JSON(http.StatusOK, dto.ConsentURLResponse{
		URL: p.GetConsentURL(state),
	})
}

func (h *AuthHandler) Callback(c *drift.Context) {
	provider := c.Param("provider")

	p, ok := h.providers[provider]
	if !ok {
		h.redirectWithError(c, "unsupported provider")
		return
	}

	state := c.QueryParam("state")
	if state == "" {
		h.redirectWithError(c, "missing state parameter")
		return
	}

	sd, ok := h.states.LoadAndDelete(state)
	if !ok {
		h.redirectWithError(c, "invalid or expired state")
		return
	}

	sdTyped, ok := sd.(stateData)
	if !ok || time.Now().After(sdTyped.expiresAt) {
		h.redirectWithError(c, "state expired")
		return
	}

	code := c.QueryParam("code")
	if code == "" {
		h.redirectWithError(c, "missing authorization code")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userInfo, err := p.ExchangeCode(ctx, code)
	if err != nil {
		h.redirectWithError(c, "failed to exchange code")
		return
	}

	user, err := h.userService.FindOrCreateFromOAuth(ctx, userInfo)
	if err != nil {
		h.redirectWithError(c, "failed to create user")
		return
	}

	authCode, err := oauth.GenerateState()
	if err != nil {
		h.redirectWithError(c, "failed to generate auth code")
		return
	}

	h.authCodes.Store(authCode, authCodeData{
		userID:    user.ID,
		expiresAt: time.Now().Add(30 * time.Second),
	})

	h.redirect(c, fmt.Sprintf("%s?code=%s", h.cfg.FrontendCallbackURL, url.QueryEscape(authCode)))
}

func (h *AuthHandler) ExchangeCode(c *drift.Context) {
	var req dto.ExchangeRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.NewError("invalid request body"))
		return
	}

	if req.Code == "" {
		_ = c.JSON(http.StatusBadRequest, dto.NewValidationError("validation failed", map[string]string{"code": "is required"}))
		return
	}

	acd, ok := h.authCodes.LoadAndDelete(req.Code)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("invalid or expired code"))
		return
	}

	codeData, ok := acd.(authCodeData)
	if !ok || time.Now().After(codeData.expiresAt) {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("code expired"))
		return
	}

	ctx := context.Background()

	user, err := h.userService.GetByID(ctx, codeData.userID)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("user not found"))
		return
	}

	tokenPair, err := h.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to generate tokens"))
		return
	}

	tokenHash := services.HashToken(tokenPair.RefreshToken)
	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	if err := h.tokenService.StoreRefreshToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to store refresh token"))
		return
	}

	h.setSessionCookie(c, tokenPair.AccessToken, tokenPair.ExpiresIn)

	_ = c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	})
}

func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.NewError("invalid request body"))
		return
	}

	if req.RefreshToken == "" {
		_ = c.JSON(http.StatusBadRequest, dto.NewValidationError("validation failed", map[string]string{"refresh_token": "is required"}))
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("invalid refresh token"))
		return
	}

	tokenHash := services.HashToken(req.RefreshToken)
	ctx := context.Background()

	storedUserID, err := h.tokenService.ValidateRefreshToken(ctx, tokenHash)
	if err != nil || storedUserID != userID {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("refresh token not found or expired"))
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("user not found"))
		return
	}

	if err := h.tokenService.RevokeRefreshToken(ctx, tokenHash); err != nil {
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to revoke old token"))
		return
	}

	tokenPair, err := h.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to generate tokens"))
		return
	}

	newTokenHash := services.HashToken(tokenPair.RefreshToken)
	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	if err := h.tokenService.StoreRefreshToken(ctx, user.ID, newTokenHash, expiresAt); err != nil {
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to store refresh token"))
		return
	}

	h.setSessionCookie(c, tokenPair.AccessToken, tokenPair.ExpiresIn)

	_ = c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.NewError("invalid request body"))
		return
	}

	if req.RefreshToken != "" {
		tokenHash := services.HashToken(req.RefreshToken)
		_ = h.tokenService.RevokeRefreshToken(context.Background(), tokenHash)
	}

	h.clearSessionCookie(c)

	_ = c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) LogoutAll(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
		return
	}

	if err := h.tokenService.RevokeAllUserTokens(context.Background(), userID); err != nil {
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to revoke tokens"))
		return
	}

	h.clearSessionCookie(c)

	_ = c.JSON(http.StatusOK, map[string]string{"message": "all sessions logged out"})
}

func (h *AuthHandler) setSessionCookie(c *drift.Context, accessToken string, expiresIn int64) {
	http.SetCookie(c.Response, &http.Cookie{
		Name:     services.SessionCookieName,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(expiresIn),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c *drift.Context) {
	http.SetCookie(c.Response, &http.Cookie{
		Name:     services.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) redirectWithError(c *drift.Context, errMsg string) {
	h.redirect(c, fmt.Sprintf("%s?error=%s", h.cfg.FrontendCallbackURL, url.QueryEscape(errMsg)))
}

func (h *AuthHandler) redirect(c *drift.Context, location string) {
	c.Response.Header().Set("Location", location)
	c.Response.WriteHeader(http.StatusFound)
	c.Abort()
}
