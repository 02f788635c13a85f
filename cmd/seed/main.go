package main

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/togglekeep/togglekeep/internal/config"
	"github.com/togglekeep/togglekeep/internal/database"
	"github.com/togglekeep/togglekeep/internal/models"
)

// Seeds the bootstrap admin and a few sample flags. Registration
// requires an existing admin, so the first one has to come from here.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}
	fmt.Println("✓ Database migrated successfully")

	adminUsername := os.Getenv("TK_ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}
	adminPassword := os.Getenv("TK_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin"
		fmt.Println("  WARNING: using default admin password, change it immediately")
	}

	var existing models.User
	if err := db.Where("username = ?", adminUsername).First(&existing).Error; err != nil {
		admin := models.User{
			UUID:     uuid.NewString(),
			Username: adminUsername,
			Role:     models.RoleAdmin,
			Active:   true,
		}
		if err := admin.SetPassword(adminPassword); err != nil {
			log.Fatalf("hash admin password: %v", err)
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Fatalf("seed admin user: %v", err)
		}
		fmt.Printf("✓ Created admin user: %s\n", adminUsername)
	} else {
		fmt.Printf("  Admin user already exists: %s\n", adminUsername)
	}

	flags := []models.FeatureFlag{
		{
			Key:         "feature-test",
			Name:        "Test feature",
			Tag:         "test",
			Description: "Sample flag for smoke testing",
			Value:       true,
			Active:      true,
		},
		{
			Key:         "new-checkout",
			Name:        "New checkout flow",
			Tag:         "checkout",
			Description: "Gradual rollout of the reworked checkout",
			Value:       false,
			Active:      true,
		},
		{
			Key:         "dark-mode",
			Name:        "Dark mode",
			Tag:         "ui",
			Value:       false,
			Active:      true,
		},
	}

	for _, flag := range flags {
		result := db.Where("key = ?", flag.Key).FirstOrCreate(&flag)
		if result.Error != nil {
			log.Printf("Failed to seed flag %s: %v", flag.Key, result.Error)
		} else if result.RowsAffected > 0 {
			fmt.Printf("✓ Created feature flag: %s\n", flag.Key)
		} else {
			fmt.Printf("  Feature flag already exists: %s\n", flag.Key)
		}
	}

	fmt.Println("\n✓ Database seeding completed successfully!")
}
