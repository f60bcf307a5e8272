package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/database"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClickService(t *testing.T) (*ClickService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewClickService(db), mock
}

func TestClickService_FetchForURLs_EmptySet(t *testing.T) {
	svc, mock := setupClickService(t)

	events, err := svc.FetchForURLs(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, events)
	// No query ran
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClickService_FetchForURLs(t *testing.T) {
	svc, mock := setupClickService(t)
	urlID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "url_id", "clicked_at", "country", "browser", "device",
		"referrer_type", "referrer_domain", "referrer_source", "language", "is_bot", "ip",
	}).
		AddRow(uuid.New(), urlID, now, "US", "Firefox", "desktop", "search", "google.com", "google", "en-US", false, "203.0.113.1").
		AddRow(uuid.New(), urlID, now.Add(-time.Hour), "DE", "Chrome", "mobile", "", "", "", "de", true, "203.0.113.2")

	mock.ExpectQuery(`SELECT (.+) FROM clicks`).
		WithArgs([]uuid.UUID{urlID}, MaxClickRows).
		WillReturnRows(rows)

	events, err := svc.FetchForURLs(context.Background(), []uuid.UUID{urlID})

	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "US", events[0].Country)
	assert.True(t, events[1].IsBot)
	assert.NoError(t, mock.ExpectationsWereMet())
}
