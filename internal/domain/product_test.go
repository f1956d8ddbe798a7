package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusInStock.Valid())
	assert.True(t, StatusInReplacement.Valid())
	assert.True(t, StatusOutOfStock.Valid())
	assert.False(t, Status("discontinued").Valid())
	assert.False(t, Status("").Valid())
}

func TestProductPatch_Apply(t *testing.T) {
	base := Product{
		ID:            1,
		Name:          "Monitor arm",
		Description:   "Single arm, gas spring",
		Price:         79.00,
		Status:        StatusInStock,
		StockQuantity: 6,
	}

	t.Run("empty patch keeps everything", func(t *testing.T) {
		merged := ProductPatch{}.Apply(base)
		assert.Equal(t, base, merged)
	})

	t.Run("set fields overlay, unset fields survive", func(t *testing.T) {
		price := 89.00
		status := StatusOutOfStock
		qty := 0

		merged := ProductPatch{Price: &price, Status: &status, StockQuantity: &qty}.Apply(base)

		assert.Equal(t, 89.00, merged.Price)
		assert.Equal(t, StatusOutOfStock, merged.Status)
		assert.Equal(t, 0, merged.StockQuantity)
		assert.Equal(t, base.Name, merged.Name)
		assert.Equal(t, base.Description, merged.Description)
		assert.Equal(t, base.ID, merged.ID)
	})

	t.Run("zero values are applied when set", func(t *testing.T) {
		name := ""
		merged := ProductPatch{Name: &name}.Apply(base)
		assert.Equal(t, "", merged.Name)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		name := "Renamed"
		ProductPatch{Name: &name}.Apply(base)
		assert.Equal(t, "Monitor arm", base.Name)
	})
}

func TestProductPatch_Empty(t *testing.T) {
	assert.True(t, ProductPatch{}.Empty())

	name := "x"
	assert.False(t, ProductPatch{Name: &name}.Empty())
}
