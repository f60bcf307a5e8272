package services

import (
	"context"
	"crypto/rand"
	"errors"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/database"
	"github.com/guplink/guplink-api/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrURLNotFound    = errors.New("url not found")
	ErrShortCodeTaken = errors.New("short code already taken")
)

const (
	shortCodeLen      = 7
	shortCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	maxCodeAttempts   = 5
)

// URLWithClicks is a list row joined with its total click count.
type URLWithClicks struct {
	models.URL
	ClickCount int64 `json:"click_count"`
}

type URLService struct {
	db *database.DB
}

func NewURLService(db *database.DB) *URLService {
	return &URLService{db: db}
}

// Create shortens a URL. With no custom code a random one is generated,
// retrying on the rare collision; a taken custom code is the caller's error.
func (s *URLService) Create(ctx context.Context, userID uuid.UUID, originalURL string, customCode, title *string) (*models.URL, error) {
	if customCode != nil {
		url, err := s.insert(ctx, userID, *customCode, originalURL, title)
		if isUniqueViolation(err) {
			return nil, ErrShortCodeTaken
		}
		return url, err
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		url, err := s.insert(ctx, userID, generateShortCode(), originalURL, title)
		if isUniqueViolation(err) {
			continue
		}
		return url, err
	}
	return nil, ErrShortCodeTaken
}

func (s *URLService) insert(ctx context.Context, userID uuid.UUID, shortCode, originalURL string, title *string) (*models.URL, error) {
	var url models.URL
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO urls (user_id, short_code, original_url, title)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, short_code, original_url, title, is_active, created_at, updated_at
	`, userID, shortCode, originalURL, title).Scan(
		&url.ID, &url.UserID, &url.ShortCode, &url.OriginalURL, &url.Title,
		&url.IsActive, &url.CreatedAt, &url.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func (s *URLService) List(ctx context.Context, userID uuid.UUID) ([]URLWithClicks, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT u.id, u.user_id, u.short_code, u.original_url, u.title, u.is_active, u.created_at, u.updated_at,
			COUNT(c.id) AS click_count
		FROM urls u
		LEFT JOIN clicks c ON c.url_id = u.id
		WHERE u.user_id = $1
		GROUP BY u.id
		ORDER BY u.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var urls []URLWithClicks
	for rows.Next() {
		var u URLWithClicks
		if err := rows.Scan(
			&u.ID, &u.UserID, &u.ShortCode, &u.OriginalURL, &u.Title,
			&u.IsActive, &u.CreatedAt, &u.UpdatedAt, &u.ClickCount,
		); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// GetByID scopes the lookup to the owner; someone else's url is not found.
func (s *URLService) GetByID(ctx context.Context, urlID, userID uuid.UUID) (*models.URL, error) {
	var url models.URL
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, user_id, short_code, original_url, title, is_active, created_at, updated_at
		FROM urls WHERE id = $1 AND user_id = $2
	`, urlID, userID).Scan(
		&url.ID, &url.UserID, &url.ShortCode, &url.OriginalURL, &url.Title,
		&url.IsActive, &url.CreatedAt, &url.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrURLNotFound
	}
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func (s *URLService) Update(ctx context.Context, urlID, userID uuid.UUID, originalURL, title *string, isActive *bool) (*models.URL, error) {
	var url models.URL
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE urls SET
			original_url = COALESCE($3, original_url),
			title = COALESCE($4, title),
			is_active = COALESCE($5, is_active),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, short_code, original_url, title, is_active, created_at, updated_at
	`, urlID, userID, originalURL, title, isActive).Scan(
		&url.ID, &url.UserID, &url.ShortCode, &url.OriginalURL, &url.Title,
		&url.IsActive, &url.CreatedAt, &url.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrURLNotFound
	}
	if err != nil {
		return nil, err
	}
	return &url, nil
}

func (s *URLService) Delete(ctx context.Context, urlID, userID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM urls WHERE id = $1 AND user_id = $2
	`, urlID, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrURLNotFound
	}
	return nil
}

// IDsForUser returns all url ids a user owns, the usual input to the
// account-wide analytics summary.
func (s *URLService) IDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT id FROM urls WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MapByIDs loads urls keyed by id, used to join recent click events with
// their parent link.
func (s *URLService) MapByIDs(ctx context.Context, urlIDs []uuid.UUID) (map[uuid.UUID]models.URL, error) {
	urlByID := make(map[uuid.UUID]models.URL, len(urlIDs))
	if len(urlIDs) == 0 {
		return urlByID, nil
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, user_id, short_code, original_url, title, is_active, created_at, updated_at
		FROM urls WHERE id = ANY($1)
	`, urlIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u models.URL
		if err := rows.Scan(
			&u.ID, &u.UserID, &u.ShortCode, &u.OriginalURL, &u.Title,
			&u.IsActive, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		urlByID[u.ID] = u
	}
	return urlByID, rows.Err()
}

func generateShortCode() string {
	b := make([]byte, shortCodeLen)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = shortCodeAlphabet[int(b[i])%len(shortCodeAlphabet)]
	}
	return string(b)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
