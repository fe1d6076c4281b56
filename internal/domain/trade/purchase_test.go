package trade

import (
	"testing"

	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPurchase(t *testing.T) *Purchase {
	t.Helper()
	p, err := NewPurchase(3, 4)
	require.NoError(t, err)
	p.ID = 900
	return p
}

func TestNewPurchase(t *testing.T) {
	p := newPurchase(t)
	assert.Equal(t, PurchaseStatusPending, p.Status)
	assert.True(t, p.Total.IsZero())

	_, err := NewPurchase(0, 4)
	assert.ErrorIs(t, err, shared.ErrValidation)
	_, err = NewPurchase(3, 0)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestPurchaseStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, PurchaseStatusPending.CanTransitionTo(PurchaseStatusFinalized))
	assert.True(t, PurchaseStatusPending.CanTransitionTo(PurchaseStatusCanceled))
	assert.False(t, PurchaseStatusFinalized.CanTransitionTo(PurchaseStatusCanceled))
	assert.False(t, PurchaseStatusCanceled.CanTransitionTo(PurchaseStatusPending))
	assert.False(t, PurchaseStatus("RECEIVED").IsValid())
}

func TestPurchase_AddLine(t *testing.T) {
	t.Run("two lines total", func(t *testing.T) {
		p := newPurchase(t)

		require.NoError(t, p.AddLine(newProduct(t, 1, "9", 0), 10, dec("5.00"), dec("0")))
		require.NoError(t, p.AddLine(newProduct(t, 2, "4", 0), 3, dec("2.00"), dec("0")))
		assert.True(t, p.Total.Equal(dec("56")))
		assert.Equal(t, "56.00", p.Total.StringFixed(2))
	})

	t.Run("merges quantity and discount into existing line", func(t *testing.T) {
		p := newPurchase(t)
		prod := newProduct(t, 1, "9", 0)

		require.NoError(t, p.AddLine(prod, 4, dec("5"), dec("1")))
		require.NoError(t, p.AddLine(prod, 6, dec("7"), dec("2")))
		require.Len(t, p.Lines, 1)
		assert.Equal(t, 10, p.Lines[0].Quantity)
		assert.True(t, p.Lines[0].UnitCost.Equal(dec("5")), "keeps the first unit cost")
		assert.True(t, p.Lines[0].Discount.Equal(dec("3")))
		assert.True(t, p.Total.Equal(dec("47")))
	})

	t.Run("caps discount at subtotal", func(t *testing.T) {
		p := newPurchase(t)

		require.NoError(t, p.AddLine(newProduct(t, 1, "9", 0), 2, dec("5"), dec("50")))
		assert.True(t, p.Lines[0].Discount.Equal(dec("10")))
		assert.True(t, p.Total.IsZero())
	})

	tests := []struct {
		name     string
		product  *catalog.Product
		quantity int
		cost     string
		discount string
	}{
		{"nil product", nil, 1, "1", "0"},
		{"zero quantity", newProduct(t, 1, "1", 0), 0, "1", "0"},
		{"zero cost", newProduct(t, 1, "1", 0), 1, "0", "0"},
		{"negative discount", newProduct(t, 1, "1", 0), 1, "1", "-1"},
	}
	for _, tt := range tests {
		t.Run("fails with "+tt.name, func(t *testing.T) {
			p := newPurchase(t)
			assert.ErrorIs(t, p.AddLine(tt.product, tt.quantity, dec(tt.cost), dec(tt.discount)), shared.ErrValidation)
			assert.Empty(t, p.Lines)
		})
	}
}

func TestPurchase_RemoveLine(t *testing.T) {
	p := newPurchase(t)
	require.NoError(t, p.AddLine(newProduct(t, 1, "9", 0), 10, dec("5"), dec("0")))
	require.NoError(t, p.AddLine(newProduct(t, 2, "9", 0), 3, dec("2"), dec("0")))

	require.NoError(t, p.RemoveLine(1))
	assert.True(t, p.Total.Equal(dec("6")))
	assert.ErrorIs(t, p.RemoveLine(1), shared.ErrValidation)
}

func TestPurchase_Finalize(t *testing.T) {
	t.Run("credits stock and updates cost", func(t *testing.T) {
		a := newProduct(t, 1, "9", 2)
		b := newProduct(t, 2, "4", 0)
		p := newPurchase(t)
		require.NoError(t, p.AddLine(a, 10, dec("5.00"), dec("0")))
		require.NoError(t, p.AddLine(b, 3, dec("2.00"), dec("0")))
		require.NoError(t, p.SetInvoiceNumber(" NF-123 "))

		require.NoError(t, p.Finalize(catalog.NewStockLedger(a, b)))
		assert.Equal(t, PurchaseStatusFinalized, p.Status)
		assert.NotNil(t, p.FinalizedAt)
		assert.Equal(t, 12, a.StockQuantity)
		assert.Equal(t, 3, b.StockQuantity)
		assert.True(t, a.Cost.Equal(dec("5")))
		assert.True(t, b.Cost.Equal(dec("2")))

		events := p.GetDomainEvents()
		require.Len(t, events, 1)
		evt := events[0].(*PurchaseFinalizedEvent)
		assert.Equal(t, "NF-123", evt.InvoiceNumber)
		assert.True(t, evt.Total.Equal(dec("56")))
	})

	t.Run("fails without lines", func(t *testing.T) {
		p := newPurchase(t)
		require.NoError(t, p.SetInvoiceNumber("NF-1"))
		assert.ErrorIs(t, p.Finalize(catalog.NewStockLedger()), shared.ErrInvalidState)
	})

	t.Run("fails without invoice number", func(t *testing.T) {
		a := newProduct(t, 1, "9", 0)
		p := newPurchase(t)
		require.NoError(t, p.AddLine(a, 1, dec("5"), dec("0")))

		assert.ErrorIs(t, p.Finalize(catalog.NewStockLedger(a)), shared.ErrValidation)
		assert.Equal(t, 0, a.StockQuantity)
		assert.Equal(t, PurchaseStatusPending, p.Status)
	})

	t.Run("rejects blank invoice number", func(t *testing.T) {
		assert.ErrorIs(t, newPurchase(t).SetInvoiceNumber("  "), shared.ErrValidation)
	})

	t.Run("finalized purchase is frozen", func(t *testing.T) {
		a := newProduct(t, 1, "9", 0)
		p := newPurchase(t)
		require.NoError(t, p.AddLine(a, 1, dec("5"), dec("0")))
		require.NoError(t, p.SetInvoiceNumber("NF-2"))
		require.NoError(t, p.Finalize(catalog.NewStockLedger(a)))

		assert.ErrorIs(t, p.Finalize(catalog.NewStockLedger(a)), shared.ErrInvalidState)
		assert.ErrorIs(t, p.AddLine(a, 1, dec("5"), dec("0")), shared.ErrInvalidState)
		assert.ErrorIs(t, p.RemoveLine(1), shared.ErrInvalidState)
		assert.ErrorIs(t, p.SetInvoiceNumber("NF-3"), shared.ErrInvalidState)
		assert.Equal(t, 1, a.StockQuantity)
	})
}

func TestPurchase_Cancel(t *testing.T) {
	t.Run("cancels pending purchase without touching stock", func(t *testing.T) {
		a := newProduct(t, 1, "9", 4)
		p := newPurchase(t)
		require.NoError(t, p.AddLine(a, 10, dec("5"), dec("0")))

		require.NoError(t, p.Cancel("supplier out of stock"))
		assert.Equal(t, PurchaseStatusCanceled, p.Status)
		assert.NotNil(t, p.CanceledAt)
		assert.Equal(t, 4, a.StockQuantity)
		assert.ErrorIs(t, p.Cancel("again"), shared.ErrInvalidState)
	})

	t.Run("finalized purchase cannot be canceled", func(t *testing.T) {
		a := newProduct(t, 1, "9", 0)
		p := newPurchase(t)
		require.NoError(t, p.AddLine(a, 1, dec("5"), dec("0")))
		require.NoError(t, p.SetInvoiceNumber("NF-9"))
		require.NoError(t, p.Finalize(catalog.NewStockLedger(a)))

		assert.ErrorIs(t, p.Cancel("too late"), shared.ErrInvalidState)
		assert.Equal(t, PurchaseStatusFinalized, p.Status)
	})
}
