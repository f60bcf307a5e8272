package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		avatar_url VARCHAR(500),
		provider VARCHAR(50) NOT NULL,
		provider_id VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(provider, provider_id)
	)`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS urls (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		short_code VARCHAR(50) UNIQUE NOT NULL,
		original_url TEXT NOT NULL,
		title VARCHAR(255),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// Click rows are inserted by the redirect edge; this service only reads them.
	`CREATE TABLE IF NOT EXISTS clicks (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		url_id UUID NOT NULL REFERENCES urls(id) ON DELETE CASCADE,
		clicked_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		country VARCHAR(100) NOT NULL DEFAULT '',
		browser VARCHAR(100) NOT NULL DEFAULT '',
		device VARCHAR(20) NOT NULL DEFAULT '',
		referrer_type VARCHAR(50) NOT NULL DEFAULT '',
		referrer_domain VARCHAR(255) NOT NULL DEFAULT '',
		referrer_source VARCHAR(255) NOT NULL DEFAULT '',
		language VARCHAR(35) NOT NULL DEFAULT '',
		is_bot BOOLEAN NOT NULL DEFAULT FALSE,
		ip VARCHAR(45) NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS api_keys (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		key_hash VARCHAR(64) UNIQUE NOT NULL,
		key_prefix VARCHAR(20) NOT NULL,
		scopes TEXT[] NOT NULL DEFAULT '{read,write}',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		expires_at TIMESTAMP WITH TIME ZONE,
		last_used_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS api_key_usage (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		api_key_id UUID NOT NULL REFERENCES api_keys(id) ON DELETE CASCADE,
		endpoint VARCHAR(255) NOT NULL,
		method VARCHAR(10) NOT NULL,
		ip VARCHAR(45) NOT NULL DEFAULT '',
		user_agent VARCHAR(500) NOT NULL DEFAULT '',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_urls_user_id ON urls(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_urls_short_code ON urls(short_code)`,
	`CREATE INDEX IF NOT EXISTS idx_clicks_url_id ON clicks(url_id)`,
	`CREATE INDEX IF NOT EXISTS idx_clicks_clicked_at ON clicks(clicked_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_api_keys_user_id ON api_keys(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_api_keys_key_hash ON api_keys(key_hash)`,
	`CREATE INDEX IF NOT EXISTS idx_api_key_usage_key_id ON api_key_usage(api_key_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
