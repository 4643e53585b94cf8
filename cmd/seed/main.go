// Command seed fills the configured database with fake Warbler data.
package main

import (
	"flag"
	"log"

	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	users := flag.Int("users", defaults.Users, "Number of users to create")
	messages := flag.Int("messages", defaults.MessagesPerUser, "Messages per user")
	follows := flag.Int("follows", defaults.FollowsPerUser, "Follows per user")
	likes := flag.Int("likes", defaults.LikesPerUser, "Likes per user")
	reset := flag.Bool("reset", true, "Drop and recreate all tables before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed (0 picks one from the clock)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Open(cfg.DatabaseURL, cfg.DBEcho)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if *reset {
		if err := database.ResetSchema(db); err != nil {
			log.Fatalf("Schema reset failed: %v", err)
		}
	} else if err := database.Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	sum, err := seed.NewSeeder(db, seed.Options{
		Users:           *users,
		MessagesPerUser: *messages,
		FollowsPerUser:  *follows,
		LikesPerUser:    *likes,
		MaxDays:         defaults.MaxDays,
		Seed:            *randSeed,
	}).Run()
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %s. Every user's password is %q.", sum, seed.DefaultPassword)
}
