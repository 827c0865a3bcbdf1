package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/tastebox/backend/internal/models"
)

// Models lists every table managed by Migrate.
var Models = []interface{}{
	&models.User{},
	&models.Recipe{},
	&models.RecipeImage{},
	&models.RecipeIngredient{},
	&models.RecipeInstruction{},
}

// Migrate creates or updates the schema. On PostgreSQL the vector extension is
// installed first so the embedding column can be created.
func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
			return fmt.Errorf("failed to install pgvector extension: %w", err)
		}
	} else {
		log.Printf("Using GORM auto-migration for %s", db.Dialector.Name())
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
