package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/middleware"
	"github.com/guplink/guplink-api/internal/services"
	"github.com/guplink/guplink-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	qrDefaultSize = 256
	qrMinSize     = 64
	qrMaxSize     = 1024
)

type QRHandler struct {
	urlService URLServiceInterface
	baseURL    string
}

func NewQRHandler(urlService URLServiceInterface, baseURL string) *QRHandler {
	return &QRHandler{urlService: urlService, baseURL: strings.TrimRight(baseURL, "/")}
}

// Generate renders the short link as a PNG QR code.
func (h *QRHandler) Generate(c *drift.Context) {
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

	size := qrDefaultSize
	if raw := c.QueryParam("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < qrMinSize || parsed > qrMaxSize {
			_ = c.JSON(http.StatusBadRequest, dto.NewValidationError("validation failed", map[string]string{"size": "must be an integer between 64 and 1024"}))
			return
		}
		size = parsed
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

	png, err := qrcode.Encode(h.baseURL+"/"+found.ShortCode, qrcode.Medium, size)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to generate qr code"))
		return
	}

	c.Response.Header().Set("Content-Type", "image/png")
	c.Response.Header().Set("Content-Length", strconv.Itoa(len(png)))
	c.Response.WriteHeader(http.StatusOK)
	_, _ = c.Response.Write(png)
	c.Abort()
}
