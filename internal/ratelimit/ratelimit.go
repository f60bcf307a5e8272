// Package ratelimit implements fixed-window request counting keyed by client
// identity, one independent counter per endpoint category.
package ratelimit

import (
	"time"
)

// Category names a logical endpoint group with its own budget.
type Category string

const (
	Public    Category = "public"
	CreateURL Category = "create_url"
	Read      Category = "read"
	Write     Category = "write"
	APIKeys   Category = "api_keys"
	QR        Category = "qr"
	Analytics Category = "analytics"
)

type Config struct {
	Max    int
	Window time.Duration
}

// Per-category budgets. Counters for different categories are independent:
// exhausting a client's write budget leaves its read budget untouched.
var defaults = map[Category]Config{
	Public:    {Max: 100, Window: time.Minute},
	CreateURL: {Max: 30, Window: time.Minute},
	Read:      {Max: 120, Window: time.Minute},
	Write:     {Max: 60, Window: time.Minute},
	APIKeys:   {Max: 20, Window: time.Minute},
	QR:        {Max: 30, Window: time.Minute},
	Analytics: {Max: 60, Window: time.Minute},
}

func ConfigFor(cat Category) Config {
	if cfg, ok := defaults[cat]; ok {
		return cfg
	}
	return defaults[Public]
}

type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	Reset     time.Time
}

// Store increments the counter for key and reports whether the request fits
// the window. Increment-and-compare must be atomic per key so two concurrent
// requests cannot both slip under the cap.
//
// MemoryStore is per-process: with N server instances the effective limit is
// N times the configured one. RedisStore shares counters across instances.
type Store interface {
	Increment(key string, cfg Config) Result
}

// CounterKey scopes a client identifier to a category so budgets stay
// independent.
func CounterKey(cat Category, clientID string) string {
	return string(cat) + ":" + clientID
}
