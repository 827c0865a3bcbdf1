package main

import (
	"context"
	"errors"
	"log"

	"github.com/tastebox/backend/config"
	"github.com/tastebox/backend/internal/database"
	"github.com/tastebox/backend/internal/models"
	"github.com/tastebox/backend/internal/service"
)

const testPassword = "testpassword123"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	auth := service.NewAuthService(db, cfg.JWTSecret)
	ctx := context.Background()

	testUsers := []struct {
		name  string
		email string
	}{
		{name: "Lucía Fernández", email: "lucia@example.com"},
		{name: "Javier Ortega", email: "javier@example.com"},
		{name: "Test User", email: "test@example.com"},
	}

	log.Println("Creating test users...")
	for _, u := range testUsers {
		if _, _, err := auth.Register(ctx, u.name, u.email, testPassword); err != nil {
			if errors.Is(err, service.ErrUserExists) {
				log.Printf("User %s already exists, skipping...", u.email)
				continue
			}
			log.Printf("Failed to create user %s: %v", u.email, err)
			continue
		}
		log.Printf("Created user: %s (%s)", u.name, u.email)
	}

	var total int64
	db.Model(&models.User{}).Count(&total)
	log.Printf("Total users: %d", total)
	log.Printf("Password for test users: %s", testPassword)
}
