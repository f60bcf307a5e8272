package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/database"
	"github.com/guplink/guplink-api/internal/models"
)

// MaxClickRows caps a single aggregation fetch to bound memory and latency.
const MaxClickRows = 10000

// ClickService reads click rows. Inserts happen at the redirect edge, not
// here.
type ClickService struct {
	db *database.DB
}

func NewClickService(db *database.DB) *ClickService {
	return &ClickService{db: db}
}

// FetchForURLs returns up to MaxClickRows events for the given url set,
// newest first. An empty id set short-circuits to no rows.
func (s *ClickService) FetchForURLs(ctx context.Context, urlIDs []uuid.UUID) ([]models.ClickEvent, error) {
	if len(urlIDs) == 0 {
		return nil, nil
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, url_id, clicked_at, country, browser, device,
			referrer_type, referrer_domain, referrer_source, language, is_bot, ip
		FROM clicks
		WHERE url_id = ANY($1)
		ORDER BY clicked_at DESC
		LIMIT $2
	`, urlIDs, MaxClickRows)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.ClickEvent
	for rows.Next() {
		var e models.ClickEvent
		if err := rows.Scan(
			&e.ID, &e.URLID, &e.ClickedAt, &e.Country, &e.Browser, &e.Device,
			&e.ReferrerType, &e.ReferrerDomain, &e.ReferrerSource,
			&e.Language, &e.IsBot, &e.IP,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
