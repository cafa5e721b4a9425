package models

import (
	"strings"

	"gorm.io/gorm"
)

// Ingredient is a catalog entry. The (name, measurement unit) pair is unique.
type Ingredient struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:128;not null;uniqueIndex:idx_ingredient_name_unit" json:"name"`
	MeasurementUnit string `gorm:"size:64;not null;uniqueIndex:idx_ingredient_name_unit" json:"measurement_unit"`
	// SearchName is Name lowered in Go, so prefix search folds non-ASCII
	// letters even where the database LOWER() does not (SQLite).
	SearchName string `gorm:"size:128;not null;default:'';index:idx_ingredients_search_name" json:"-"`
}

// TableName specifies the table name for GORM
func (Ingredient) TableName() string {
	return "ingredients"
}

func (i *Ingredient) BeforeSave(*gorm.DB) error {
	i.SearchName = strings.ToLower(i.Name)
	return nil
}
