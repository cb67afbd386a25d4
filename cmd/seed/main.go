package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/sahilchouksey/skill-training-api/config"
	"github.com/sahilchouksey/skill-training-api/database"
)

func main() {
	// Load environment variables
	if err := config.LoadENV(); err != nil {
		log.Println("Warning: .env file could not be read, using system environment variables")
	}

	env, err := config.Get()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	store, err := database.Open(env)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run seeds
	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("Skill Training - Database Seeding")
	fmt.Println(separator)
	fmt.Println()

	seeder := database.NewSeeder(store, database.SeedConfig{
		AdminEmail:        env.ADMIN_EMAIL,
		AdminPassword:     env.ADMIN_PASSWORD,
		AllowDefaultAdmin: !env.IsProduction(),
	})
	if err := seeder.SeedAll(context.Background()); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	fmt.Println()
	fmt.Println(separator)
	fmt.Println("🎉 Seeding completed successfully!")
	fmt.Println(separator)
	fmt.Println()
	fmt.Println("Admin user created from ADMIN_EMAIL and ADMIN_PASSWORD environment variables.")
	fmt.Println("Outside production the default admin is used when they are not set.")
	fmt.Println()
}
