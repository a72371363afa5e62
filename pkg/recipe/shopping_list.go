package recipe

import (
	"fmt"
	"strings"

	"foodgram/domain"
)

const shoppingListHeader = "Foodgram - Список покупок"

// RenderShoppingList formats aggregated cart rows as the downloadable plain
// text report. The layout is fixed: header line, separator, blank line, then
// one numbered line per distinct (name, unit) pair.
func RenderShoppingList(items []domain.ShoppingItem) string {
	var b strings.Builder
	b.WriteString(shoppingListHeader + "\n")
	b.WriteString(strings.Repeat("=", 30) + "\n\n")
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf(
			"%d. %s — %d %s", i+1, item.Name, item.TotalAmount, item.MeasurementUnit,
		))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}
