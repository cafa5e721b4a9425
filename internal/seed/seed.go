// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"

	"github.com/YURESSA/foodgram-st/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configures the seeder.
type Options struct {
	NumUsers       int
	NumRecipes     int
	MaxIngredients int
	// MaxFollows caps how many authors each user follows.
	MaxFollows int
	// MaxCollected caps how many recipes each user favorites and carts.
	MaxCollected int
	SkipBcrypt   bool
	RandomSeed   int64
}

// DefaultOptions returns the options used by the seed command.
func DefaultOptions() Options {
	return Options{
		NumUsers:       20,
		NumRecipes:     60,
		MaxIngredients: 8,
		MaxFollows:     5,
		MaxCollected:   6,
	}
}

// Summary counts what a seeding run created.
type Summary struct {
	Users         int
	Ingredients   int
	Recipes       int
	Subscriptions int
	Favorites     int
	CartItems     int
}

// Seeder populates the database with fake but consistent data.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a Seeder writing to db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	factory, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, opts: opts, factory: factory}, nil
}

// ClearAll removes every row the seeder can create, dependants first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	log.Println("🗑️  Clearing existing data...")
	tables := []any{
		&models.ShoppingCartItem{},
		&models.Favorite{},
		&models.RecipeIngredient{},
		&models.Recipe{},
		&models.Subscription{},
		&models.User{},
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(table).Error; err != nil {
				return fmt.Errorf("clear %T: %w", table, err)
			}
		}
		return nil
	})
}

// Run seeds users, the ingredient catalog when empty, recipes, follows and
// both recipe collections.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	log.Printf("🌱 Seeding %d users and %d recipes...", s.opts.NumUsers, s.opts.NumRecipes)
	summary := &Summary{}

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, user)
	}
	summary.Users = len(users)
	log.Printf("✓ %d users created", summary.Users)
	if len(users) == 0 {
		return summary, nil
	}

	catalog, created, err := s.ensureCatalog(ctx)
	if err != nil {
		return nil, err
	}
	summary.Ingredients = created
	log.Printf("✓ %d ingredients available (%d new)", len(catalog), created)

	recipes := make([]*models.Recipe, 0, s.opts.NumRecipes)
	for i := 0; i < s.opts.NumRecipes; i++ {
		author := users[i%len(users)]
		recipe, err := s.factory.CreateRecipe(ctx, author, catalog, s.opts.MaxIngredients)
		if err != nil {
			return nil, fmt.Errorf("failed to create recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	summary.Recipes = len(recipes)
	log.Printf("✓ %d recipes created", summary.Recipes)

	for _, user := range users {
		for _, author := range Sample(s.factory, users, s.opts.MaxFollows+1) {
			if author.ID == user.ID {
				continue
			}
			n, err := s.insertIgnore(ctx, &models.Subscription{UserID: user.ID, AuthorID: author.ID})
			if err != nil {
				return nil, fmt.Errorf("failed to create subscription: %w", err)
			}
			summary.Subscriptions += n
		}

		for _, recipe := range Sample(s.factory, recipes, s.opts.MaxCollected) {
			n, err := s.insertIgnore(ctx, &models.Favorite{UserID: user.ID, RecipeID: recipe.ID})
			if err != nil {
				return nil, fmt.Errorf("failed to create favorite: %w", err)
			}
			summary.Favorites += n
		}
		for _, recipe := range Sample(s.factory, recipes, s.opts.MaxCollected) {
			n, err := s.insertIgnore(ctx, &models.ShoppingCartItem{UserID: user.ID, RecipeID: recipe.ID})
			if err != nil {
				return nil, fmt.Errorf("failed to create cart item: %w", err)
			}
			summary.CartItems += n
		}
	}
	log.Printf("✓ %d subscriptions, %d favorites, %d cart items", summary.Subscriptions, summary.Favorites, summary.CartItems)

	log.Println("🎉 Database seeding completed successfully!")
	return summary, nil
}

func (s *Seeder) ensureCatalog(ctx context.Context) ([]models.Ingredient, int, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Ingredient{}).Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("count ingredients: %w", err)
	}
	created := 0
	if count == 0 {
		n, err := ImportIngredients(ctx, s.db, DefaultIngredients)
		if err != nil {
			return nil, 0, err
		}
		created = n
	}
	var catalog []models.Ingredient
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&catalog).Error; err != nil {
		return nil, 0, fmt.Errorf("load ingredients: %w", err)
	}
	return catalog, created, nil
}

func (s *Seeder) insertIgnore(ctx context.Context, row any) (int, error) {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(row)
	return int(res.RowsAffected), res.Error
}
