package service

import (
	"bytes"
	"fmt"

	"github.com/YURESSA/foodgram-st/internal/config"
	"github.com/YURESSA/foodgram-st/internal/models"
)

// ShoppingListFilename is the attachment name of a downloaded shopping list.
const ShoppingListFilename = "shopping_list.txt"

// ShoppingListStyle resolves the requested style, falling back to fallback
// and then to the plain style for unknown values.
func ShoppingListStyle(requested, fallback string) string {
	for _, style := range []string{requested, fallback} {
		switch style {
		case config.ShoppingListPlain, config.ShoppingListNumbered:
			return style
		}
	}
	return config.ShoppingListPlain
}

// RenderShoppingList renders aggregated items as a text file. The output only
// depends on items and style.
func RenderShoppingList(items []models.ShoppingListItem, style string) []byte {
	var buf bytes.Buffer
	if style == config.ShoppingListNumbered {
		buf.WriteString("Shopping list:\n\n")
		for i, item := range items {
			fmt.Fprintf(&buf, "%d. %s - %d %s\n", i+1, item.Name, item.TotalAmount, item.MeasurementUnit)
		}
		return buf.Bytes()
	}
	for _, item := range items {
		fmt.Fprintf(&buf, "%s - %d (%s)\n", item.Name, item.TotalAmount, item.MeasurementUnit)
	}
	return buf.Bytes()
}
