package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/repository"
	"github.com/YURESSA/foodgram-st/internal/service"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Ingredient file formats understood by DecodeIngredients.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// IngredientRecord is one catalog entry of an ingredient fixture file.
type IngredientRecord struct {
	Name            string `json:"name" yaml:"name"`
	MeasurementUnit string `json:"measurement_unit" yaml:"measurement_unit"`
}

// DefaultIngredients is the catalog seeded when the table is empty.
var DefaultIngredients = []IngredientRecord{
	{Name: "all-purpose flour", MeasurementUnit: "g"},
	{Name: "sugar", MeasurementUnit: "g"},
	{Name: "salt", MeasurementUnit: "pinch"},
	{Name: "butter", MeasurementUnit: "g"},
	{Name: "eggs", MeasurementUnit: "pcs"},
	{Name: "milk", MeasurementUnit: "ml"},
	{Name: "olive oil", MeasurementUnit: "tbsp"},
	{Name: "garlic", MeasurementUnit: "clove"},
	{Name: "onion", MeasurementUnit: "pcs"},
	{Name: "tomatoes", MeasurementUnit: "g"},
	{Name: "potatoes", MeasurementUnit: "g"},
	{Name: "carrots", MeasurementUnit: "g"},
	{Name: "chicken breast", MeasurementUnit: "g"},
	{Name: "rice", MeasurementUnit: "g"},
	{Name: "pasta", MeasurementUnit: "g"},
	{Name: "parmesan", MeasurementUnit: "g"},
	{Name: "black pepper", MeasurementUnit: "tsp"},
	{Name: "lemon", MeasurementUnit: "pcs"},
	{Name: "honey", MeasurementUnit: "tbsp"},
	{Name: "basil", MeasurementUnit: "bunch"},
}

// FormatFromPath picks the decoder for a fixture file by its extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yml", ".yaml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported ingredient file %q: want .json, .yml or .yaml", path)
}

// DecodeIngredients reads a list of {name, measurement_unit} objects.
func DecodeIngredients(r io.Reader, format string) ([]IngredientRecord, error) {
	var records []IngredientRecord
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("decode json ingredients: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&records); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml ingredients: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown ingredient format %q", format)
	}
	return records, nil
}

// LoadIngredientsFile decodes the fixture file at path.
func LoadIngredientsFile(path string) ([]IngredientRecord, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return DecodeIngredients(f, format)
}

// ImportIngredients adds records to the catalog through IngredientService,
// so fixture rows get the same validation and cache invalidation as any other
// import. Existing (name, measurement_unit) pairs are left alone.
func ImportIngredients(ctx context.Context, db *gorm.DB, records []IngredientRecord) (int, error) {
	items := make([]models.Ingredient, len(records))
	for i, rec := range records {
		items[i] = models.Ingredient{Name: rec.Name, MeasurementUnit: rec.MeasurementUnit}
	}
	created, err := service.NewIngredientService(repository.NewIngredientRepository(db)).Import(ctx, items)
	return int(created), err
}
