package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db      *gorm.DB
	recipes repository.RecipeRepository
	faker  *gofakeit.Faker
	rnd    *rand.Rand
	hashed string
	seq    int
}

// NewFactory creates a Factory bound to db. A zero seed picks a random one.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	seed := opts.RandomSeed
	if seed == 0 {
		seed = rand.Int63() // #nosec G404: acceptable for seeding
	}

	hashed := DefaultPassword
	if !opts.SkipBcrypt {
		b, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password: %w", err)
		}
		hashed = string(b)
	}

	return &Factory{
		db:      db,
		recipes: repository.NewRecipeRepository(db),
		faker:  gofakeit.New(seed),
		rnd:    rand.New(rand.NewSource(seed)), // #nosec G404: acceptable for seeding
		hashed: hashed,
	}, nil
}

// BuildUser returns an unsaved user with unique username and email.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	f.seq++
	username := strings.ToLower(fmt.Sprintf("%s%d", f.faker.Username(), f.seq))
	user := &models.User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: f.faker.FirstName(),
		LastName:  f.faker.LastName(),
		Password:  f.hashed,
		Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (f *Factory) dishName() string {
	switch f.rnd.Intn(4) {
	case 0:
		return f.faker.Breakfast()
	case 1:
		return f.faker.Lunch()
	case 2:
		return f.faker.Dinner()
	default:
		return f.faker.Dessert()
	}
}

// BuildRecipe returns an unsaved recipe by author using between one and
// maxLines distinct ingredients from catalog.
func (f *Factory) BuildRecipe(author *models.User, catalog []models.Ingredient, maxLines int) *models.Recipe {
	name := f.dishName()
	if len(name) > 256 {
		name = name[:256]
	}
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Image:       fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID()),
		Text:        f.faker.Paragraph(1, 4, 12, "\n"),
		CookingTime: f.faker.Number(models.MinCookingTime, 180),
	}

	if maxLines < 1 {
		maxLines = 1
	}
	if maxLines > len(catalog) {
		maxLines = len(catalog)
	}
	lines := 1 + f.rnd.Intn(maxLines)
	for _, idx := range f.rnd.Perm(len(catalog))[:lines] {
		recipe.Ingredients = append(recipe.Ingredients, models.RecipeIngredient{
			IngredientID: catalog[idx].ID,
			Amount:       f.faker.Number(models.MinIngredientAmount, 500),
		})
	}
	return recipe
}

// CreateRecipe builds and persists a recipe together with its ingredient lines.
func (f *Factory) CreateRecipe(ctx context.Context, author *models.User, catalog []models.Ingredient, maxLines int) (*models.Recipe, error) {
	if len(catalog) == 0 {
		return nil, fmt.Errorf("ingredient catalog is empty")
	}
	recipe := f.BuildRecipe(author, catalog, maxLines)
	if err := f.recipes.Create(ctx, recipe); err != nil {
		return nil, err
	}
	return recipe, nil
}

// Sample picks up to n distinct items of from, in random order.
func Sample[T any](f *Factory, from []T, n int) []T {
	if n > len(from) {
		n = len(from)
	}
	out := make([]T, 0, n)
	for _, idx := range f.rnd.Perm(len(from))[:n] {
		out = append(out, from[idx])
	}
	return out
}
