// Command seed populates the database with generated development data.
package main

import (
	"flag"
	"log"

	"glimpse/internal/config"
	"glimpse/internal/database"
	"glimpse/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	numChats := flag.Int("chats", 15, "Number of direct chats to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(db)
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	users, err := s.SeedSocialMesh(*numUsers)
	if err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}
	if _, err := s.SeedContent(users, *numPosts); err != nil {
		log.Fatalf("Content seeding failed: %v", err)
	}
	if err := s.SeedStories(users); err != nil {
		log.Fatalf("Story seeding failed: %v", err)
	}
	if err := s.SeedChats(users, *numChats); err != nil {
		log.Fatalf("Chat seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
