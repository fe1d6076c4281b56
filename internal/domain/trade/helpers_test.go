package trade

import (
	"fmt"
	"testing"

	"github.com/erp/posledger/internal/domain/catalog"
	"github.com/erp/posledger/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newProduct(t *testing.T, id int64, price string, stock int) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(fmt.Sprintf("P%03d", id), fmt.Sprintf("Product %d", id), dec(price), dec("1"))
	require.NoError(t, err)
	p.ID = id
	if stock > 0 {
		require.NoError(t, p.Adjust(stock, catalog.StockIn))
	}
	return p
}

// finalizedOrder builds a finalized order with one line per product and quantity
func finalizedOrder(t *testing.T, products []*catalog.Product, quantities []int) *Order {
	t.Helper()
	o, err := NewOrder(10, 20)
	require.NoError(t, err)
	o.ID = 100
	for i, p := range products {
		require.NoError(t, o.AddLine(p, quantities[i], nil))
	}
	require.NoError(t, o.Finalize())
	return o
}

func pendingSale(t *testing.T, products []*catalog.Product, quantities []int) *Sale {
	t.Helper()
	s, err := NewSaleFromOrder(finalizedOrder(t, products, quantities))
	require.NoError(t, err)
	s.ID = 500
	return s
}

func paidSale(t *testing.T, s *Sale, method valueobject.PaymentMethod, paid string) *Sale {
	t.Helper()
	require.NoError(t, s.SetPaymentMethod(method))
	require.NoError(t, s.SetAmountPaid(dec(paid)))
	return s
}

type fakeRegister struct {
	open     bool
	err      error
	recorded []*Sale
}

func (f *fakeRegister) IsOpen() bool {
	return f.open
}

func (f *fakeRegister) RecordSale(s *Sale) error {
	if f.err != nil {
		return f.err
	}
	f.recorded = append(f.recorded, s)
	return nil
}
