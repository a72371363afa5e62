package migration

import (
	"fmt"
	"log"

	"foodgram/entities"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")

	models := []interface{}{
		&entities.User{},
		&entities.Subscription{},
		&entities.Tag{},
		&entities.Ingredient{},
		&entities.Recipe{},
		&entities.IngredientInRecipe{},
		&entities.Favorite{},
		&entities.ShoppingCart{},
	}
	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			log.Fatalf("Error migrating database: %v", err)
			return err
		}
	}

	fmt.Println("Database migration complete")
	return nil
}
