package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/guplink/guplink-api/internal/config"
	"github.com/guplink/guplink-api/internal/database"
	"github.com/guplink/guplink-api/internal/models"
	"github.com/guplink/guplink-api/internal/services"
)

// Mints an admin-scoped API key for an existing user. The plaintext key is
// printed once and never stored.
func main() {
	if len(os.Args) != 3 {
		fmt.Println("Usage: create-key <email> <key-name>")
		os.Exit(1)
	}

	email := os.Args[1]
	name := os.Args[2]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	var userID uuid.UUID
	err = db.Pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&userID)
	if err != nil {
		log.Fatalf("No user found with email %s: %v", email, err)
	}

	apiKeyService := services.NewAPIKeyService(db)
	key, plainKey, err := apiKeyService.Create(ctx, userID, name, []string{models.ScopeAdmin}, nil)
	if err != nil {
		log.Fatalf("Failed to create api key: %v", err)
	}

	fmt.Printf("Created key %s (%s) for %s\n", key.Name, key.KeyPrefix, email)
	fmt.Printf("Key (store it now, it will not be shown again): %s\n", plainKey)
}
