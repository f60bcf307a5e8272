package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/middleware"
	"github.com/guplink/guplink-api/pkg/dto"
	"github.com/jackc/pgx/v5"
	"github.com/m1z23r/drift/pkg/drift"
)

type UserHandler struct {
	userService UserServiceInterface
}

func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) GetMe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
		return
	}

	user, err := h.userService.GetByID(context.Background(), userID)
	if errors.Is(err, pgx.ErrNoRows) {
		_ = c.JSON(http.StatusNotFound, dto.NewError("user not found"))
		return
	}
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to load user"))
		return
	}

	_ = c.JSON(http.StatusOK, dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		Provider:  user.Provider,
	})
}

func (h *UserHandler) UpdateMe(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		_ = c.JSON(http.StatusUnauthorized, dto.NewError("authentication required"))
		return
	}

	var req dto.UpdateUserRequest
	if err := c.BindJSON(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, dto.NewError("invalid request body"))
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		_ = c.JSON(http.StatusBadRequest, dto.NewValidationError("validation failed", map[string]string{"name": "is required"}))
		return
	}

	user, err := h.userService.Update(context.Background(), userID, req.Name)
	if err != nil {
		_ = c.JSON(http.StatusInternalServerError, dto.NewError("failed to update user"))
		return
	}

	_ = c.JSON(http.StatusOK, dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		Provider:  user.Provider,
	})
}
