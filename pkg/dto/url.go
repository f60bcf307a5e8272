package dto

import "github.com/google/uuid"

type CreateURLRequest struct {
	OriginalURL string  `json:"original_url"`
	ShortCode   string  `json:"short_code,omitempty"`
	Title       *string `json:"title,omitempty"`
}

type UpdateURLRequest struct {
	OriginalURL *string `json:"original_url,omitempty"`
	Title       *string `json:"title,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type URLResponse struct {
	ID          uuid.UUID `json:"id"`
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"`
	OriginalURL string    `json:"original_url"`
	Title       *string   `json:"title,omitempty"`
	IsActive    bool      `json:"is_active"`
	ClickCount  int64     `json:"click_count"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}
