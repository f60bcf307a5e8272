package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/middleware"
	"github.com/guplink/guplink-api/internal/services"
	"github.com/guplink/guplink-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type AnalyticsHandler struct {
	analyticsService AnalyticsServiceInterface
	urlService       URLServiceInterface
}

func NewAnalyticsHandler(analyticsService AnalyticsServiceInterface, urlService URLServiceInterface) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		urlService:       urlService,
	}
}

// Summary aggregates clicks across every url the caller owns.
func (h *AnalyticsHandler) Summary(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
		return
	}

	summary, err := h.analyticsService.SummarizeUser(context.Background(), userID)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to aggregate analytics"))
		return
	}

	_ = c.JSON(http.StatusOK, summary)
}

// URLSummary aggregates clicks for a single url owned by the caller.
func (h *AnalyticsHandler) URLSummary(c *drift.Context) {
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

	// Ownership check before touching click data.
	if _, err := h.urlService.GetByID(context.Background(), urlID, userID); err != nil {
		if errors.Is(err, services.ErrURLNotFound) {
			_ = c.JSON(http.StatusNotFound, dto.NewError("url not found"))
			return
		}
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to load url"))
		return
	}

	summary, err := h.analyticsService.Summarize(context.Background(), []uuid.UUID{urlID})
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to aggregate analytics"))
		return
	}

	_ = c.JSON(http.StatusOK, summary)
}
