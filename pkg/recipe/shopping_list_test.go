package recipe

import (
	"strings"
	"testing"

	"foodgram/domain"

	"github.com/stretchr/testify/assert"
)

func TestRenderShoppingList(t *testing.T) {
	items := []domain.ShoppingItem{
		{Name: "Egg", MeasurementUnit: "pcs", TotalAmount: 1},
		{Name: "Flour", MeasurementUnit: "g", TotalAmount: 5},
	}

	got := RenderShoppingList(items)

	want := "Foodgram - Список покупок\n" +
		strings.Repeat("=", 30) + "\n\n" +
		"1. Egg — 1 pcs\n" +
		"2. Flour — 5 g"
	assert.Equal(t, want, got)
}

func TestRenderShoppingListSingleItemHasNoTrailingNewline(t *testing.T) {
	got := RenderShoppingList([]domain.ShoppingItem{
		{Name: "Salt", MeasurementUnit: "g", TotalAmount: 10},
	})

	assert.False(t, strings.HasSuffix(got, "\n"))
	assert.True(t, strings.HasSuffix(got, "1. Salt — 10 g"))
}

func TestRenderShoppingListNumbersLinesSequentially(t *testing.T) {
	items := []domain.ShoppingItem{
		{Name: "A", MeasurementUnit: "g", TotalAmount: 1},
		{Name: "B", MeasurementUnit: "g", TotalAmount: 2},
		{Name: "C", MeasurementUnit: "g", TotalAmount: 3},
	}

	got := RenderShoppingList(items)

	lines := strings.Split(got, "\n")
	assert.Equal(t, "1. A — 1 g", lines[3])
	assert.Equal(t, "2. B — 2 g", lines[4])
	assert.Equal(t, "3. C — 3 g", lines[5])
}
