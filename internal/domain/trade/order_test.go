package trade

import (
	"testing"

	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== OrderStatus ====================

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusOpen, OrderStatusFinalized, true},
		{OrderStatusOpen, OrderStatusCanceled, true},
		{OrderStatusOpen, OrderStatusOpen, false},
		{OrderStatusFinalized, OrderStatusOpen, false},
		{OrderStatusFinalized, OrderStatusCanceled, false},
		{OrderStatusFinalized, OrderStatusFinalized, false},
		{OrderStatusCanceled, OrderStatusOpen, false},
		{OrderStatusCanceled, OrderStatusFinalized, false},
		{OrderStatusCanceled, OrderStatusCanceled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrderStatus_IsValid(t *testing.T) {
	assert.True(t, OrderStatusOpen.IsValid())
	assert.True(t, OrderStatusFinalized.IsValid())
	assert.True(t, OrderStatusCanceled.IsValid())
	assert.False(t, OrderStatus("SHIPPED").IsValid())
	assert.Equal(t, "OPEN", OrderStatusOpen.String())
}

// ==================== NewOrder ====================

func TestNewOrder(t *testing.T) {
	t.Run("creates open order", func(t *testing.T) {
		o, err := NewOrder(1, 2)
		require.NoError(t, err)
		assert.Equal(t, OrderStatusOpen, o.Status)
		assert.True(t, o.IsOpen())
		assert.True(t, o.Total.IsZero())
		assert.Empty(t, o.Lines)
	})

	t.Run("accepts walk-in customer", func(t *testing.T) {
		o, err := NewOrder(0, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(0), o.CustomerID)
	})

	t.Run("fails without seller", func(t *testing.T) {
		_, err := NewOrder(1, 0)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

// ==================== AddLine ====================

func TestOrder_AddLine(t *testing.T) {
	t.Run("adds line with product price", func(t *testing.T) {
		o, _ := NewOrder(1, 2)
		p := newProduct(t, 1, "12.50", 10)

		require.NoError(t, o.AddLine(p, 2, nil))
		require.Len(t, o.Lines, 1)
		assert.Equal(t, "Product 1", o.Lines[0].ProductName)
		assert.True(t, o.Lines[0].UnitPrice.Equal(dec("12.50")))
		assert.True(t, o.Total.Equal(dec("25")))
	})

	t.Run("uses explicit unit price", func(t *testing.T) {
		o, _ := NewOrder(1, 2)
		price := dec("9.99")

		require.NoError(t, o.AddLine(newProduct(t, 1, "12.50", 10), 1, &price))
		assert.True(t, o.Total.Equal(price))
	})

	t.Run("merges quantity into existing line", func(t *testing.T) {
		o, _ := NewOrder(1, 2)
		p := newProduct(t, 1, "3", 10)

		require.NoError(t, o.AddLine(p, 2, nil))
		require.NoError(t, o.AddLine(p, 3, nil))
		require.Len(t, o.Lines, 1)
		assert.Equal(t, 5, o.Lines[0].Quantity)
		assert.True(t, o.Total.Equal(dec("15")))
	})

	t.Run("sums several lines", func(t *testing.T) {
		o, _ := NewOrder(1, 2)

		require.NoError(t, o.AddLine(newProduct(t, 1, "3", 10), 2, nil))
		require.NoError(t, o.AddLine(newProduct(t, 2, "4.25", 10), 4, nil))
		assert.Len(t, o.Lines, 2)
		assert.True(t, o.Total.Equal(dec("23")))
		assert.Equal(t, []int64{1, 2}, o.ProductIDs())
	})

	t.Run("fails with zero quantity", func(t *testing.T) {
		o, _ := NewOrder(1, 2)
		assert.ErrorIs(t, o.AddLine(newProduct(t, 1, "3", 10), 0, nil), shared.ErrValidation)
		assert.Empty(t, o.Lines)
	})

	t.Run("fails with inactive product", func(t *testing.T) {
		o, _ := NewOrder(1, 2)
		p := newProduct(t, 1, "3", 10)
		require.NoError(t, p.Deactivate())
		assert.ErrorIs(t, o.AddLine(p, 1, nil), shared.ErrValidation)
	})

	t.Run("fails with negative price", func(t *testing.T) {
		o, _ := NewOrder(1, 2)
		price := dec("-1")
		assert.ErrorIs(t, o.AddLine(newProduct(t, 1, "3", 10), 1, &price), shared.ErrValidation)
	})

	t.Run("fails with nil product", func(t *testing.T) {
		o, _ := NewOrder(1, 2)
		assert.ErrorIs(t, o.AddLine(nil, 1, nil), shared.ErrValidation)
	})
}

func TestOrder_ChangesRequireOpenStatus(t *testing.T) {
	p := newProduct(t, 1, "3", 10)
	o, _ := NewOrder(1, 2)
	require.NoError(t, o.AddLine(p, 1, nil))
	require.NoError(t, o.Finalize())

	assert.ErrorIs(t, o.AddLine(p, 1, nil), shared.ErrInvalidState)
	assert.ErrorIs(t, o.RemoveLine(p.ID), shared.ErrInvalidState)
	assert.ErrorIs(t, o.SetLineDiscount(p.ID, dec("1")), shared.ErrInvalidState)
	assert.Equal(t, 1, o.Lines[0].Quantity)
}

// ==================== RemoveLine / SetLineDiscount ====================

func TestOrder_RemoveLine(t *testing.T) {
	o, _ := NewOrder(1, 2)
	require.NoError(t, o.AddLine(newProduct(t, 1, "3", 10), 2, nil))
	require.NoError(t, o.AddLine(newProduct(t, 2, "5", 10), 1, nil))

	require.NoError(t, o.RemoveLine(1))
	require.Len(t, o.Lines, 1)
	assert.Equal(t, int64(2), o.Lines[0].ProductID)
	assert.True(t, o.Total.Equal(dec("5")))

	assert.ErrorIs(t, o.RemoveLine(1), shared.ErrValidation)
}

func TestOrder_SetLineDiscount(t *testing.T) {
	o, _ := NewOrder(1, 2)
	require.NoError(t, o.AddLine(newProduct(t, 1, "10", 10), 3, nil))

	t.Run("applies discount to line and total", func(t *testing.T) {
		require.NoError(t, o.SetLineDiscount(1, dec("5")))
		assert.True(t, o.Lines[0].Total.Equal(dec("25")))
		assert.True(t, o.Total.Equal(dec("25")))
	})

	t.Run("accepts discount equal to subtotal", func(t *testing.T) {
		require.NoError(t, o.SetLineDiscount(1, dec("30")))
		assert.True(t, o.Total.IsZero())
	})

	t.Run("rejects discount above subtotal", func(t *testing.T) {
		assert.ErrorIs(t, o.SetLineDiscount(1, dec("30.01")), shared.ErrValidation)
	})

	t.Run("rejects negative discount", func(t *testing.T) {
		assert.ErrorIs(t, o.SetLineDiscount(1, dec("-1")), shared.ErrValidation)
	})

	t.Run("rejects unknown product", func(t *testing.T) {
		assert.ErrorIs(t, o.SetLineDiscount(9, dec("1")), shared.ErrValidation)
	})
}

// ==================== Finalize / Cancel ====================

func TestOrder_Finalize(t *testing.T) {
	t.Run("finalizes order with lines", func(t *testing.T) {
		o, _ := NewOrder(1, 2)
		o.ID = 7
		require.NoError(t, o.AddLine(newProduct(t, 1, "10", 10), 1, nil))

		require.NoError(t, o.Finalize())
		assert.Equal(t, OrderStatusFinalized, o.Status)
		assert.NotNil(t, o.FinalizedAt)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		evt := events[0].(*OrderFinalizedEvent)
		assert.Equal(t, int64(7), evt.OrderID)
		assert.Equal(t, 1, evt.LineCount)
	})

	t.Run("fails without lines", func(t *testing.T) {
		o, _ := NewOrder(1, 2)
		assert.ErrorIs(t, o.Finalize(), shared.ErrInvalidState)
		assert.Equal(t, OrderStatusOpen, o.Status)
	})

	t.Run("fails when already finalized", func(t *testing.T) {
		o := finalizedOrder(t, []*catalog.Product{newProduct(t, 1, "10", 10)}, []int{1})
		assert.ErrorIs(t, o.Finalize(), shared.ErrInvalidState)
	})
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("cancels open order", func(t *testing.T) {
		o, _ := NewOrder(1, 2)

		require.NoError(t, o.Cancel("  customer gave up "))
		assert.Equal(t, OrderStatusCanceled, o.Status)
		assert.Equal(t, "customer gave up", o.CancelReason)
		assert.NotNil(t, o.CanceledAt)

		events := o.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeOrderCanceled, events[0].EventType())
	})

	t.Run("fails with blank reason", func(t *testing.T) {
		o, _ := NewOrder(1, 2)
		assert.ErrorIs(t, o.Cancel("   "), shared.ErrValidation)
		assert.Equal(t, OrderStatusOpen, o.Status)
	})

	t.Run("terminal statuses reject every transition", func(t *testing.T) {
		finalized := finalizedOrder(t, []*catalog.Product{newProduct(t, 1, "10", 10)}, []int{1})
		assert.ErrorIs(t, finalized.Cancel("late"), shared.ErrInvalidState)
		assert.ErrorIs(t, finalized.Finalize(), shared.ErrInvalidState)

		canceled, _ := NewOrder(1, 2)
		require.NoError(t, canceled.Cancel("oops"))
		assert.ErrorIs(t, canceled.Cancel("again"), shared.ErrInvalidState)
		assert.ErrorIs(t, canceled.Finalize(), shared.ErrInvalidState)
	})
}
