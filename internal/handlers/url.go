package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/middleware"
	"github.com/guplink/guplink-api/internal/models"
	"github.com/guplink/guplink-api/internal/services"
	"github.com/guplink/guplink-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type URLHandler struct {
	urlService URLServiceInterface
	baseURL    string
}

func NewURLHandler(urlService URLServiceInterface, baseURL string) *URLHandler {
	return &URLHandler{urlService: urlService, baseURL: strings.TrimRight(baseURL, "/")}
}

func (h *URLHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
		return
	}

	var req dto.CreateURLRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.NewError("invalid request body"))
		return
	}

	if fields := validateCreateURL(&req); len(fields) > 0 {
		_ = c.JSON(http.StatusBadRequest, dto.NewValidationError("validation failed", fields))
		return
	}

	var customCode *string
	if req.ShortCode != "" {
		customCode = &req.ShortCode
	}

	created, err := h.urlService.Create(context.Background(), userID, req.OriginalURL, customCode, req.Title)
	if err != nil {
		if errors.Is(err, services.ErrShortCodeTaken) {
			_ = c.JSON(http.StatusConflict, dto.NewError("short code already in use"))
			return
		}
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to create url"))
		return
	}

	_ = c.JSON(http.StatusCreated, h.toURLResponse(*created, 0))
}

func (h *URLHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
		return
	}

	urls, err := h.urlService.List(context.Background(), userID)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to list urls"))
		return
	}

	response := make([]dto.URLResponse, 0, len(urls))
	for _, u := range urls {
		response = append(response, h.toURLResponse(u.URL, u.ClickCount))
	}

	_ = c.JSON(http.StatusOK, response)
}

func (h *URLHandler) Get(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
		return
	}

	urlID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.NewError("invalid url id"))
		return
	}

	found, err := h.urlService.GetByID(context.Background(), urlID, userID)
	if err != nil {
		if errors.Is(err, services.ErrURLNotFound) {
			_ = c.JSON(http.StatusNotFound, dto.NewError("url not found"))
			return
		}
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to load url"))
		return
	}

	_ = c.JSON(http.StatusOK, h.toURLResponse(*found, 0))
}

func (h *URLHandler) Update(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
		return
	}

	urlID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.NewError("invalid url id"))
		return
	}

	var req dto.UpdateURLRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.NewError("invalid request body"))
		return
	}

	if req.OriginalURL != nil && !isValidTargetURL(*req.OriginalURL) {
		_ = c.JSON(http.StatusBadRequest, dto.NewValidationError("validation failed", map[string]string{"original_url": "must be a valid http or https url"}))
		return
	}

	updated, err := h.urlService.Update(context.Background(), urlID, userID, req.OriginalURL, req.Title, req.IsActive)
	if err != nil {
		if errors.Is(err, services.ErrURLNotFound) {
			_ = c.JSON(http.StatusNotFound, dto.NewError("url not found"))
			return
		}
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to update url"))
		return
	}

	_ = c.JSON(http.StatusOK, h.toURLResponse(*updated, 0))
}

func (h *URLHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
		return
	}

	urlID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.NewError("invalid url id"))
		return
	}

	if err := h.urlService.Delete(context.Background(), urlID, userID); err != nil {
		if errors.Is(err, services.ErrURLNotFound) {
			_ = c.JSON(http.StatusNotFound, dto.NewError("url not found"))
			return
		}
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to delete url"))
		return
	}

	_ = c.JSON(http.StatusOK, map[string]string{"message": "url deleted"})
}

func (h *URLHandler) toURLResponse(u models.URL, clicks int64) dto.URLResponse {
	return dto.URLResponse{
		ID:          u.ID,
		ShortCode:   u.ShortCode,
		ShortURL:    h.baseURL + "/" + u.ShortCode,
		OriginalURL: u.OriginalURL,
		Title:       u.Title,
		IsActive:    u.IsActive,
		ClickCount:  clicks,
		CreatedAt:   u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   u.UpdatedAt.Format(time.RFC3339),
	}
}

func validateCreateURL(req *dto.CreateURLRequest) map[string]string {
	fields := make(map[string]string)

	if strings.TrimSpace(req.OriginalURL) == "" {
		fields["original_url"] = "is required"
	} else if !isValidTargetURL(req.OriginalURL) {
		fields["original_url"] = "must be a valid http or https url"
	}

	if req.ShortCode != "" && !isValidShortCode(req.ShortCode) {
		fields["short_code"] = "must be 3-32 characters of letters, digits, hyphens or underscores"
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}

func isValidTargetURL(raw string) bool {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func isValidShortCode(code string) bool {
	if len(code) < 3 || len(code) > 32 {
		return false
	}
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}
