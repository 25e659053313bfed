// Command main fills a SocialSphere store with generated demo data.
package main

import (
	"context"
	"flag"
	"log"

	"socialsphere/internal/config"
	"socialsphere/internal/observability"
	"socialsphere/internal/repository"
	"socialsphere/internal/seed"
	"socialsphere/internal/storage"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	numProducts := flag.Int("products", 15, "Number of marketplace listings to create")
	numGroups := flag.Int("groups", 5, "Number of groups to create")
	numMessages := flag.Int("messages", 40, "Number of direct messages to create")
	shouldClean := flag.Bool("clean", true, "Reset the store to its built-in defaults before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 picks one)")
	flag.Parse()

	log.Println("🌱 SocialSphere Seeder")
	log.Println("======================")
	log.Printf("Target: %d users, %d posts, %d products, clean=%v\n", *numUsers, *numPosts, *numProducts, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := observability.InitLogger(cfg.LogLevel, cfg.LogFormat, cfg.Env)

	ctx := context.Background()
	store, err := storage.Open(ctx, cfg, logger.Logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	db := repository.NewDB(store)
	if *shouldClean {
		if err := db.Reset(ctx); err != nil {
			log.Fatalf("❌ Reset failed: %v", err)
		}
	}

	s := seed.NewSeeder(db, seed.NewFactory(seed.FactoryOptions{Seed: *randSeed}))

	users, err := s.SeedSocialMesh(ctx, *numUsers)
	if err != nil {
		log.Fatalf("❌ User seeding failed: %v", err)
	}
	if _, err := s.SeedEngagement(ctx, users, *numPosts); err != nil {
		log.Fatalf("❌ Engagement seeding failed: %v", err)
	}
	if err := s.SeedMarketplace(ctx, users, *numProducts); err != nil {
		log.Fatalf("❌ Marketplace seeding failed: %v", err)
	}
	if err := s.SeedCommunities(ctx, users, *numGroups, *numMessages); err != nil {
		log.Fatalf("❌ Community seeding failed: %v", err)
	}

	log.Println("✨ All done! Your store is now populated with test data.")
	log.Println("📧 Sign in with any seeded email, or alex@test.com for the default user.")
}
