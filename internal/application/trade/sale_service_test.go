package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/posledger/internal/domain/shared"
	"github.com/erp/posledger/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestSaleService_CreateFromOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("copies the order", func(t *testing.T) {
		env := newTestEnv(t)
		cafe := env.product(t, "CAFE", "25", 10)
		order := env.finalizedOrder(t, line(cafe, 2))

		sale, err := env.sales.CreateFromOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", sale.Status)
		assert.Equal(t, order.ID, sale.OrderID)
		assert.True(t, sale.Total.Equal(dec("50")))
		require.Len(t, sale.Items, 1)
		assert.NotZero(t, sale.Items[0].ID)

		found, err := env.sales.GetByOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, sale.ID, found.ID)
	})

	t.Run("one sale per order", func(t *testing.T) {
		env := newTestEnv(t)
		cafe := env.product(t, "CAFE", "25", 10)
		order := env.finalizedOrder(t, line(cafe, 1))
		_, err := env.sales.CreateFromOrder(ctx, order.ID)
		require.NoError(t, err)

		_, err = env.sales.CreateFromOrder(ctx, order.ID)
		assert.ErrorIs(t, err, shared.ErrDuplicateKey)
	})

	t.Run("order must be finalized", func(t *testing.T) {
		env := newTestEnv(t)
		order, err := env.orders.Create(ctx, CreateOrderRequest{SellerID: 7})
		require.NoError(t, err)

		_, err = env.sales.CreateFromOrder(ctx, order.ID)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})
}

func TestSaleService_FinalizeCash(t *testing.T) {
	ctx := context.Background()

	t.Run("debits stock and posts payment and change to the register", func(t *testing.T) {
		env := newTestEnv(t)
		cafe := env.product(t, "CAFE", "25", 10)
		session := env.openSession(t, 7, "100")
		sale := env.pendingSale(t, line(cafe, 2))

		_, err := env.sales.SetPayment(ctx, sale.ID, SetPaymentRequest{PaymentMethod: "CASH", AmountPaid: dec("60")})
		require.NoError(t, err)

		resp, err := env.sales.Finalize(ctx, sale.ID, FinalizeSaleRequest{OperatorID: 7})
		require.NoError(t, err)
		assert.Equal(t, "FINALIZED", resp.Status)
		assert.True(t, resp.Change.Equal(dec("10")))
		assert.Equal(t, 8, env.stock(t, cafe.ID))

		stored := env.session(t, session.ID)
		assert.True(t, stored.ClosingBalance.Equal(dec("150")))
		require.Len(t, stored.Movements, 2)
		assert.Equal(t, resp.ID, *stored.Movements[0].SaleID)
		assert.Contains(t, env.publisher.types(), trade.EventTypeSaleFinalized)
	})

	t.Run("no open register leaves everything unchanged", func(t *testing.T) {
		env := newTestEnv(t)
		cafe := env.product(t, "CAFE", "25", 10)
		sale := env.pendingSale(t, line(cafe, 2))
		_, err := env.sales.SetPayment(ctx, sale.ID, SetPaymentRequest{PaymentMethod: "CASH", AmountPaid: dec("50")})
		require.NoError(t, err)

		_, err = env.sales.Finalize(ctx, sale.ID, FinalizeSaleRequest{OperatorID: 7})
		require.ErrorIs(t, err, shared.ErrInvalidState)

		assert.Equal(t, 10, env.stock(t, cafe.ID))
		got, err := env.sales.GetByID(ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, "PENDING", got.Status)
	})

	t.Run("insufficient payment", func(t *testing.T) {
		env := newTestEnv(t)
		cafe := env.product(t, "CAFE", "25", 10)
		env.openSession(t, 7, "100")
		sale := env.pendingSale(t, line(cafe, 2))
		_, err := env.sales.SetPayment(ctx, sale.ID, SetPaymentRequest{PaymentMethod: "CASH", AmountPaid: dec("49.99")})
		require.NoError(t, err)

		_, err = env.sales.Finalize(ctx, sale.ID, FinalizeSaleRequest{OperatorID: 7})
		assert.ErrorIs(t, err, shared.ErrInsufficientFunds)
		assert.Equal(t, 10, env.stock(t, cafe.ID))
	})

	t.Run("discount lowers the amount due and the change", func(t *testing.T) {
		env := newTestEnv(t)
		cafe := env.product(t, "CAFE", "25", 10)
		session := env.openSession(t, 7, "0")
		sale := env.pendingSale(t, line(cafe, 1))
		_, err := env.sales.SetPayment(ctx, sale.ID, SetPaymentRequest{PaymentMethod: "CASH", AmountPaid: dec("25"), Discount: dec("5")})
		require.NoError(t, err)

		resp, err := env.sales.Finalize(ctx, sale.ID, FinalizeSaleRequest{OperatorID: 7})
		require.NoError(t, err)
		assert.True(t, resp.Change.Equal(dec("5")))
		assert.True(t, env.session(t, session.ID).ClosingBalance.Equal(dec("20")))
	})
}

func TestSaleService_FinalizeStockIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	cafe := env.product(t, "CAFE", "10", 5)
	pao := env.product(t, "PAO", "1", 1)
	sale := env.pendingSale(t, line(cafe, 2), line(pao, 2))

	_, err := env.sales.SetPayment(ctx, sale.ID, SetPaymentRequest{PaymentMethod: "PIX", AmountPaid: dec("22")})
	require.NoError(t, err)

	_, err = env.sales.Finalize(ctx, sale.ID, FinalizeSaleRequest{})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	assert.Equal(t, 5, env.stock(t, cafe.ID))
	assert.Equal(t, 1, env.stock(t, pao.ID))
	assert.NotContains(t, env.publisher.types(), trade.EventTypeSaleFinalized)
}

func TestSaleService_Installments(t *testing.T) {
	ctx := context.Background()

	t.Run("credit card plan", func(t *testing.T) {
		env := newTestEnv(t)
		cafe := env.product(t, "CAFE", "100", 10)
		sale := env.pendingSale(t, line(cafe, 1))

		resp, err := env.sales.SetPayment(ctx, sale.ID, SetPaymentRequest{PaymentMethod: "CREDIT_CARD", AmountPaid: dec("100"), Installments: 3})
		require.NoError(t, err)
		require.Len(t, resp.Installments, 3)
		assert.True(t, resp.Installments[0].Amount.Equal(dec("33.34")))
		assert.True(t, resp.Installments[2].Amount.Equal(dec("33.33")))

		_, err = env.sales.Finalize(ctx, sale.ID, FinalizeSaleRequest{})
		require.NoError(t, err)
		assert.Equal(t, 9, env.stock(t, cafe.ID))

		resp, err = env.sales.PayInstallment(ctx, sale.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, "PAID", resp.Installments[0].Status)
		assert.NotNil(t, resp.Installments[0].PaidAt)
		assert.Contains(t, env.publisher.types(), trade.EventTypeInstallmentPaid)

		_, err = env.sales.PayInstallment(ctx, sale.ID, 1)
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		_, err = env.sales.PayInstallment(ctx, sale.ID, 9)
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("installment method without plan cannot finalize", func(t *testing.T) {
		env := newTestEnv(t)
		cafe := env.product(t, "CAFE", "100", 10)
		sale := env.pendingSale(t, line(cafe, 1))
		_, err := env.sales.SetPayment(ctx, sale.ID, SetPaymentRequest{PaymentMethod: "BOLETO", AmountPaid: dec("100")})
		require.NoError(t, err)

		_, err = env.sales.Finalize(ctx, sale.ID, FinalizeSaleRequest{})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("discount after the plan regenerates it over the new amount due", func(t *testing.T) {
		env := newTestEnv(t)
		cafe := env.product(t, "CAFE", "100", 10)
		sale := env.pendingSale(t, line(cafe, 1))
		firstDue := time.Date(2026, 11, 10, 0, 0, 0, 0, time.UTC)

		_, err := env.sales.SetPayment(ctx, sale.ID, SetPaymentRequest{
			PaymentMethod: "CREDIT_CARD", AmountPaid: dec("100"), Installments: 2, FirstDueDate: &firstDue,
		})
		require.NoError(t, err)

		resp, err := env.sales.SetPayment(ctx, sale.ID, SetPaymentRequest{PaymentMethod: "CREDIT_CARD", AmountPaid: dec("90"), Discount: dec("10")})
		require.NoError(t, err)
		require.Len(t, resp.Installments, 2)
		assert.True(t, resp.Installments[0].Amount.Equal(dec("45")))
		assert.True(t, resp.Installments[1].Amount.Equal(dec("45")))
		assert.True(t, resp.Installments[0].DueDate.Equal(firstDue))

		resp, err = env.sales.Finalize(ctx, sale.ID, FinalizeSaleRequest{})
		require.NoError(t, err)
		assert.Equal(t, "FINALIZED", resp.Status)
		total := decimal.Zero
		for _, inst := range resp.Installments {
			total = total.Add(inst.Amount)
		}
		assert.True(t, total.Equal(dec("90")))
	})

	t.Run("plan above the configured maximum", func(t *testing.T) {
		env := newTestEnv(t)
		cafe := env.product(t, "CAFE", "100", 10)
		sale := env.pendingSale(t, line(cafe, 1))
		_, err := env.sales.SetPayment(ctx, sale.ID, SetPaymentRequest{PaymentMethod: "CREDIT_CARD", AmountPaid: dec("100"), Installments: 13})
		assert.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("cash sale cannot carry a plan", func(t *testing.T) {
		env := newTestEnv(t)
		cafe := env.product(t, "CAFE", "100", 10)
		sale := env.pendingSale(t, line(cafe, 1))
		_, err := env.sales.SetPayment(ctx, sale.ID, SetPaymentRequest{PaymentMethod: "CASH", AmountPaid: dec("100"), Installments: 2})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("overdue sweep", func(t *testing.T) {
		env := newTestEnv(t)
		cafe := env.product(t, "CAFE", "90", 10)
		sale := env.pendingSale(t, line(cafe, 1))
		firstDue := time.Now().AddDate(0, 0, -45)
		_, err := env.sales.SetPayment(ctx, sale.ID, SetPaymentRequest{
			PaymentMethod: "CREDIT_CARD", AmountPaid: dec("90"), Installments: 3, FirstDueDate: &firstDue,
		})
		require.NoError(t, err)
		_, err = env.sales.Finalize(ctx, sale.ID, FinalizeSaleRequest{})
		require.NoError(t, err)

		changed, err := env.sales.RefreshOverdue(ctx, time.Now())
		require.NoError(t, err)
		assert.Equal(t, 2, changed)

		got, err := env.sales.GetByID(ctx, sale.ID)
		require.NoError(t, err)
		assert.Equal(t, "OVERDUE", got.Installments[0].Status)
		assert.Equal(t, "OVERDUE", got.Installments[1].Status)
		assert.Equal(t, "PENDING", got.Installments[2].Status)

		changed, err = env.sales.RefreshOverdue(ctx, time.Now())
		require.NoError(t, err)
		assert.Zero(t, changed)

		_, err = env.sales.PayInstallment(ctx, sale.ID, 1)
		assert.NoError(t, err)
	})
}

func TestSaleService_Cancel(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	cafe := env.product(t, "CAFE", "100", 10)
	sale := env.pendingSale(t, line(cafe, 3))

	t.Run("pending sale cannot be canceled", func(t *testing.T) {
		_, err := env.sales.Cancel(ctx, sale.ID, CancelRequest{Reason: "erro"})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	_, err := env.sales.SetPayment(ctx, sale.ID, SetPaymentRequest{PaymentMethod: "CREDIT_CARD", AmountPaid: dec("300"), Installments: 2})
	require.NoError(t, err)
	_, err = env.sales.Finalize(ctx, sale.ID, FinalizeSaleRequest{})
	require.NoError(t, err)
	require.Equal(t, 7, env.stock(t, cafe.ID))

	t.Run("reason is required", func(t *testing.T) {
		_, err := env.sales.Cancel(ctx, sale.ID, CancelRequest{Reason: ""})
		assert.ErrorIs(t, err, shared.ErrValidation)
		assert.Equal(t, 7, env.stock(t, cafe.ID))
	})

	t.Run("returns stock and cancels open installments", func(t *testing.T) {
		resp, err := env.sales.Cancel(ctx, sale.ID, CancelRequest{Reason: "devolucao"})
		require.NoError(t, err)
		assert.Equal(t, "CANCELED", resp.Status)
		assert.Equal(t, "devolucao", resp.CancelReason)
		assert.Equal(t, 10, env.stock(t, cafe.ID))
		for _, inst := range resp.Installments {
			assert.Equal(t, "CANCELED", inst.Status)
		}
		assert.Contains(t, env.publisher.types(), trade.EventTypeSaleCanceled)
	})

	t.Run("second cancel fails and stock stays", func(t *testing.T) {
		_, err := env.sales.Cancel(ctx, sale.ID, CancelRequest{Reason: "de novo"})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Equal(t, 10, env.stock(t, cafe.ID))
	})
}

func TestSaleService_ConcurrentFinalizeNeverOversells(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	cafe := env.product(t, "CAFE", "10", 5)

	const buyers = 10
	saleIDs := make([]int64, buyers)
	for i := range saleIDs {
		sale := env.pendingSale(t, line(cafe, 1))
		_, err := env.sales.SetPayment(ctx, sale.ID, SetPaymentRequest{PaymentMethod: "PIX", AmountPaid: dec("10")})
		require.NoError(t, err)
		saleIDs[i] = sale.ID
	}

	results := make([]error, buyers)
	var g errgroup.Group
	for i, id := range saleIDs {
		g.Go(func() error {
			_, results[i] = env.sales.Finalize(ctx, id, FinalizeSaleRequest{})
			return nil
		})
	}
	require.NoError(t, g.Wait())

	succeeded := 0
	for _, err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, shared.ErrInsufficientStock):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, env.stock(t, cafe.ID))
}
