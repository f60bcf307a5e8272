package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/database"
)

type usageEntry struct {
	keyID     uuid.UUID
	endpoint  string
	method    string
	ip        string
	userAgent string
	at        time.Time
}

// UsageLogger records API key usage off the request path. Record never
// blocks and never fails the caller: entries go through a bounded channel to
// a single worker, and anything beyond the buffer is dropped. Write errors
// are logged and swallowed. After Close, Record is a no-op, so a request
// still in flight during shutdown cannot hit a closed channel.
type UsageLogger struct {
	db      *database.DB
	entries chan usageEntry
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

func NewUsageLogger(db *database.DB) *UsageLogger {
	l := &UsageLogger{
		db:      db,
		entries: make(chan usageEntry, 256),
		done:    make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *UsageLogger) Record(keyID uuid.UUID, endpoint, method, ip, userAgent string) {
	entry := usageEntry{
		keyID:     keyID,
		endpoint:  endpoint,
		method:    method,
		ip:        ip,
		userAgent: userAgent,
		at:        time.Now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	select {
	case l.entries <- entry:
	default:
		// Buffer full. Usage logging is best-effort; drop rather than block.
	}
}

// Close stops accepting entries and drains what is already buffered.
// Safe to call more than once.
func (l *UsageLogger) Close() {
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.entries)
	}
	l.mu.Unlock()
	<-l.done
}

func (l *UsageLogger) run() {
	defer close(l.done)
	for entry := range l.entries {
		l.write(entry)
	}
}

func (l *UsageLogger) write(entry usageEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := l.db.Pool.Exec(ctx, `
		INSERT INTO api_key_usage (api_key_id, endpoint, method, ip, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, entry.keyID, entry.endpoint, entry.method, entry.ip, entry.userAgent, entry.at)
	if err != nil {
		log.Printf("usage log insert failed for key %s: %v", entry.keyID, err)
	}

	_, err = l.db.Pool.Exec(ctx, `
		UPDATE api_keys SET last_used_at = $2 WHERE id = $1
	`, entry.keyID, entry.at)
	if err != nil {
		log.Printf("last_used_at update failed for key %s: %v", entry.keyID, err)
	}
}
