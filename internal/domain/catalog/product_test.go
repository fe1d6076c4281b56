package catalog

import (
	"fmt"
	"testing"

	"github.com/erp/posledger/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T, id int64, stock int) *Product {
	t.Helper()
	p, err := NewProduct(fmt.Sprintf("SKU-%d", id), "Test product", decimal.NewFromInt(10), decimal.NewFromInt(6))
	require.NoError(t, err)
	p.ID = id
	if stock > 0 {
		require.NoError(t, p.Adjust(stock, StockIn))
	}
	return p
}

// ==================== NewProduct ====================

func TestNewProduct(t *testing.T) {
	t.Run("creates active product with zero stock", func(t *testing.T) {
		p, err := NewProduct(" 7891000 ", "Arroz 5kg", decimal.NewFromFloat(24.9), decimal.NewFromFloat(18.5))
		require.NoError(t, err)
		assert.Equal(t, "7891000", p.Code)
		assert.Equal(t, "Arroz 5kg", p.Name)
		assert.True(t, p.Active)
		assert.Equal(t, 0, p.StockQuantity)
		assert.Equal(t, 1, p.Version)
		assert.True(t, p.IsNew())
		assert.Equal(t, "6.4", p.Margin().String())
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewProduct("  ", "Arroz", decimal.Zero, decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct("A1", "", decimal.Zero, decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("fails with negative price", func(t *testing.T) {
		_, err := NewProduct("A1", "Arroz", decimal.NewFromInt(-1), decimal.Zero)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("fails with negative cost", func(t *testing.T) {
		_, err := NewProduct("A1", "Arroz", decimal.Zero, decimal.NewFromInt(-1))
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

// ==================== Adjust ====================

func TestProduct_Adjust(t *testing.T) {
	t.Run("incoming stock always succeeds and touches updated at", func(t *testing.T) {
		p := newTestProduct(t, 1, 0)
		before := p.UpdatedAt

		require.NoError(t, p.Adjust(7, StockIn))
		assert.Equal(t, 7, p.StockQuantity)
		assert.False(t, p.UpdatedAt.Before(before))
	})

	t.Run("outgoing stock decreases quantity", func(t *testing.T) {
		p := newTestProduct(t, 1, 5)

		require.NoError(t, p.Adjust(5, StockOut))
		assert.Equal(t, 0, p.StockQuantity)
	})

	t.Run("outgoing stock above quantity fails and leaves stock", func(t *testing.T) {
		p := newTestProduct(t, 1, 0)

		err := p.Adjust(1, StockOut)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, 0, p.StockQuantity)
	})

	t.Run("fails with non-positive quantity", func(t *testing.T) {
		p := newTestProduct(t, 1, 3)

		assert.ErrorIs(t, p.Adjust(0, StockIn), shared.ErrValidation)
		assert.ErrorIs(t, p.Adjust(-2, StockOut), shared.ErrValidation)
		assert.Equal(t, 3, p.StockQuantity)
	})

	t.Run("fails with unknown direction", func(t *testing.T) {
		p := newTestProduct(t, 1, 3)

		assert.ErrorIs(t, p.Adjust(1, StockDirection("SIDEWAYS")), shared.ErrValidation)
	})

	t.Run("raises event when dropping below minimum", func(t *testing.T) {
		p := newTestProduct(t, 1, 10)
		require.NoError(t, p.SetMinStock(5))
		p.ClearDomainEvents()

		require.NoError(t, p.Adjust(4, StockOut))
		assert.Empty(t, p.GetDomainEvents())

		require.NoError(t, p.Adjust(2, StockOut))
		events := p.PullDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*StockBelowMinimumEvent)
		require.True(t, ok)
		assert.Equal(t, EventTypeStockBelowMinimum, evt.EventType())
		assert.Equal(t, int64(1), evt.AggregateID())
		assert.Equal(t, 4, evt.StockQuantity)
		assert.Equal(t, 5, evt.MinStockQuantity)
	})
}

// ==================== Minimum stock & status ====================

func TestProduct_MinStock(t *testing.T) {
	p := newTestProduct(t, 1, 3)

	assert.False(t, p.IsBelowMinimum(), "zero minimum disables the check")

	require.NoError(t, p.SetMinStock(4))
	assert.True(t, p.IsBelowMinimum())

	require.NoError(t, p.SetMinStock(3))
	assert.False(t, p.IsBelowMinimum())

	assert.ErrorIs(t, p.SetMinStock(-1), shared.ErrValidation)
}

func TestProduct_ActivateDeactivate(t *testing.T) {
	p := newTestProduct(t, 1, 0)

	assert.ErrorIs(t, p.Activate(), shared.ErrInvalidState)
	require.NoError(t, p.Deactivate())
	assert.False(t, p.Active)
	assert.ErrorIs(t, p.Deactivate(), shared.ErrInvalidState)
	require.NoError(t, p.Activate())
	assert.True(t, p.Active)
}

func TestProduct_Prices(t *testing.T) {
	p := newTestProduct(t, 1, 0)

	require.NoError(t, p.SetPrices(decimal.NewFromInt(12), decimal.NewFromInt(7)))
	assert.True(t, p.Price.Equal(decimal.NewFromInt(12)))
	assert.ErrorIs(t, p.SetPrices(decimal.NewFromInt(-1), decimal.Zero), shared.ErrValidation)

	require.NoError(t, p.UpdateCost(decimal.NewFromFloat(7.5)))
	assert.Equal(t, "7.5", p.Cost.String())
	assert.ErrorIs(t, p.UpdateCost(decimal.Zero), shared.ErrValidation)
}
