package service

import (
	"fmt"
	"strings"
)

// ShortLink returns the stable short URL of a recipe.
func ShortLink(base string, recipeID uint) string {
	return fmt.Sprintf("%s/s/%d", strings.TrimRight(base, "/"), recipeID)
}

// RecipePageURL is where a short link redirects to.
func RecipePageURL(frontend string, recipeID uint) string {
	return fmt.Sprintf("%s/recipes/%d", strings.TrimRight(frontend, "/"), recipeID)
}
