package models

import (
	"time"
)

// CollectionKind names one of the per-user recipe collections.
type CollectionKind string

const (
	// CollectionFavorites holds a user's favorited recipes.
	CollectionFavorites CollectionKind = "favorites"
	// CollectionShoppingCart holds the recipes a user plans to cook.
	CollectionShoppingCart CollectionKind = "shopping_cart"
)

// Valid reports whether k is a known collection.
func (k CollectionKind) Valid() bool {
	return k == CollectionFavorites || k == CollectionShoppingCart
}

// Label is the human name of k used in error messages.
func (k CollectionKind) Label() string {
	if k == CollectionShoppingCart {
		return "the shopping cart"
	}
	return "favorites"
}

// Favorite is a (user, recipe) membership in the favorites collection.
type Favorite struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorite_pair"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_favorite_pair;index"`
	CreatedAt time.Time

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (Favorite) TableName() string {
	return "favorites"
}

// ShoppingCartItem is a (user, recipe) membership in the shopping cart.
type ShoppingCartItem struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_shopping_cart_pair"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:idx_shopping_cart_pair;index"`
	CreatedAt time.Time

	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for GORM
func (ShoppingCartItem) TableName() string {
	return "shopping_cart_items"
}
