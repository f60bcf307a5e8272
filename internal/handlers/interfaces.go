package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/models"
	"github.com/guplink/guplink-api/internal/oauth"
	"github.com/guplink/guplink-api/internal/services"
	"github.com/guplink/guplink-api/pkg/dto"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(tokenString string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// APIKeyServiceInterface defines the methods used by handlers from APIKeyService
type APIKeyServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, name string, scopes []string, expiresAt *time.Time) (*models.APIKey, string, error)
	List(ctx context.Context, userID uuid.UUID) ([]models.APIKey, error)
	Update(ctx context.Context, keyID, userID uuid.UUID, name *string, scopes []string, isActive *bool) (*models.APIKey, error)
	Revoke(ctx context.Context, keyID, userID uuid.UUID) error
	Delete(ctx context.Context, keyID, userID uuid.UUID) error
}

// URLServiceInterface defines the methods used by handlers from URLService
type URLServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, originalURL string, customCode, title *string) (*models.URL, error)
	List(ctx context.Context, userID uuid.UUID) ([]services.URLWithClicks, error)
	GetByID(ctx context.Context, urlID, userID uuid.UUID) (*models.URL, error)
	Update(ctx context.Context, urlID, userID uuid.UUID, originalURL, title *string, isActive *bool) (*models.URL, error)
	Delete(ctx context.Context, urlID, userID uuid.UUID) error
}

// AnalyticsServiceInterface defines the methods used by handlers from AnalyticsService
type AnalyticsServiceInterface interface {
	SummarizeUser(ctx context.Context, userID uuid.UUID) (*dto.AnalyticsSummary, error)
	Summarize(ctx context.Context, urlIDs []uuid.UUID) (*dto.AnalyticsSummary, error)
}
