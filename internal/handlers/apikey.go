package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/middleware"
	"github.com/guplink/guplink-api/internal/models"
	"github.com/guplink/guplink-api/internal/services"
	"github.com/guplink/guplink-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type APIKeyHandler struct {
	apiKeyService APIKeyServiceInterface
}

func NewAPIKeyHandler(apiKeyService APIKeyServiceInterface) *APIKeyHandler {
	return &APIKeyHandler{apiKeyService: apiKeyService}
}

func (h *APIKeyHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
		return
	}

	var req dto.CreateAPIKeyRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.NewError("invalid request body"))
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		_ = c.JSON(http.StatusBadRequest, dto.NewValidationError("validation failed", map[string]string{"name": "is required"}))
		return
	}

	for _, scope := range req.Scopes {
		if !models.IsValidScope(scope) {
			_ = c.JSON(http.StatusBadRequest, dto.NewValidationError("validation failed", map[string]string{"scopes": "unknown scope: " + scope}))
			return
		}
	}

	apiKey, plainKey, err := h.apiKeyService.Create(context.Background(), userID, req.Name, req.Scopes, req.ExpiresAt)
	if err != nil {
		if errors.Is(err, services.ErrAPIKeyLimit) {
			_ = c.JSON(http.StatusConflict, dto.NewError("active api key limit reached"))
			return
		}
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to create api key"))
		return
	}

	response := dto.APIKeyCreatedResponse{
		ID:        apiKey.ID,
		Name:      apiKey.Name,
		Key:       plainKey,
		KeyPrefix: apiKey.KeyPrefix,
		Scopes:    apiKey.Scopes,
		CreatedAt: apiKey.CreatedAt.Format(time.RFC3339),
	}
	if apiKey.ExpiresAt != nil {
		formatted := apiKey.ExpiresAt.Format(time.RFC3339)
		response.ExpiresAt = &formatted
	}

	_ = c.JSON(http.StatusCreated, response)
}

func (h *APIKeyHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
		return
	}

	keys, err := h.apiKeyService.List(context.Background(), userID)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to list api keys"))
		return
	}

	response := make([]dto.APIKeyResponse, 0, len(keys))
	for _, k := range keys {
		response = append(response, toAPIKeyResponse(k))
	}

	_ = c.JSON(http.StatusOK, response)
}

func (h *APIKeyHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.NewError("invalid key id"))
		return
	}

	var req dto.UpdateAPIKeyRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.NewError("invalid request body"))
		return
	}

	for _, scope := range req.Scopes {
		if !models.IsValidScope(scope) {
			_ = c.JSON(http.StatusBadRequest, dto.NewValidationError("validation failed", map[string]string{"scopes": "unknown scope: " + scope}))
			return
		}
	}

	key, err := h.apiKeyService.Update(context.Background(), keyID, userID, req.Name, req.Scopes, req.IsActive)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAPIKeyNotFound):
			_ = c.JSON(http.StatusNotFound, dto.NewError("api key not found"))
		case errors.Is(err, services.ErrAPIKeyLimit):
			_ = c.JSON(http.StatusConflict, dto.NewError("active api key limit reached"))
		default:
			_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to update api key"))
		}
		return
	}

	_ = c.JSON(http.StatusOK, toAPIKeyResponse(*key))
}

func (h *APIKeyHandler) Revoke(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.NewError("invalid key id"))
		return
	}

	if err := h.apiKeyService.Revoke(context.Background(), keyID, userID); err != nil {
		if errors.Is(err, services.ErrAPIKeyNotFound) {
			_ = c.JSON(http.StatusNotFound, dto.NewError("api key not found"))
			return
		}
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to revoke api key"))
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "api key revoked"})
}

func (h *APIKeyHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.NewError("invalid key id"))
		return
	}

	if err := h.apiKeyService.Delete(context.Background(), keyID, userID); err != nil {
		if errors.Is(err, services.ErrAPIKeyNotFound) {
			_ = c.JSON(http.StatusNotFound, dto.NewError("api key not found"))
			return
		}
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to delete api key"))
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "api key deleted"})
}

func toAPIKeyResponse(k models.APIKey) dto.APIKeyResponse {
	response := dto.APIKeyResponse{
		ID:        k.ID,
		Name:      k.Name,
		KeyPrefix: k.KeyPrefix,
		Scopes:    k.Scopes,
		IsActive:  k.IsActive,
		CreatedAt: k.CreatedAt.Format(time.RFC3339),
	}
	if k.ExpiresAt != nil {
		formatted := k.ExpiresAt.Format(time.RFC3339)
		response.ExpiresAt = &formatted
	}
	if k.LastUsedAt != nil {
		formatted := k.LastUsedAt.Format(time.RFC3339)
		response.LastUsedAt = &formatted
	}
	return response
}
