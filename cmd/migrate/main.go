package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/tastebox/backend/config"
	"github.com/tastebox/backend/internal/database"
)

func main() {
	// Parse command line flags
	check := flag.Bool("check", false, "Report missing tables without migrating")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if *check {
		missing := 0
		for _, model := range database.Models {
			if !db.Migrator().HasTable(model) {
				fmt.Printf("Missing table for %T\n", model)
				missing++
			}
		}
		if missing > 0 {
			log.Fatalf("%d tables missing", missing)
		}
		fmt.Println("Schema is up to date.")
		return
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	fmt.Println("All migrations applied successfully.")
}
