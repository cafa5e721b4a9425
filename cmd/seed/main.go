// Command main runs the database seeder for Foodgram.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/YURESSA/foodgram-st/internal/bootstrap"
	"github.com/YURESSA/foodgram-st/internal/config"
	"github.com/YURESSA/foodgram-st/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	numUsers := flag.Int("users", defaults.NumUsers, "Number of users to create")
	numRecipes := flag.Int("recipes", defaults.NumRecipes, "Number of recipes to create")
	maxIngredients := flag.Int("max-ingredients", defaults.MaxIngredients, "Maximum ingredient lines per recipe")
	shouldClean := flag.Bool("clean", false, "Remove users, recipes and collections before seeding")
	fast := flag.Bool("fast", false, "Store seed passwords without bcrypt (development only)")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 picks one)")
	ingredients := flag.String("ingredients", "", "Import this JSON or YAML ingredient file first")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d recipes, clean=%v\n", *numUsers, *numRecipes, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{IngredientsFile: *ingredients})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = rt.Close(context.Background()) }()

	opts := defaults
	opts.NumUsers = *numUsers
	opts.NumRecipes = *numRecipes
	opts.MaxIngredients = *maxIngredients
	opts.SkipBcrypt = *fast
	opts.RandomSeed = *randomSeed

	s, err := seed.NewSeeder(rt.DB, opts)
	if err != nil {
		log.Fatalf("❌ Seeder setup failed: %v", err)
	}

	ctx := context.Background()
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if _, err := s.Run(ctx); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
}
