package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.NewFromInt(10), USD)
	require.NoError(t, err)
	assert.Equal(t, USD, m.Currency())
	assert.True(t, m.Amount().Equal(decimal.NewFromInt(10)))

	_, err = NewMoney(decimal.NewFromInt(10), "")
	assert.Error(t, err)
}

func TestNewMoneyBRLFromString(t *testing.T) {
	m, err := NewMoneyBRLFromString("99.90")
	require.NoError(t, err)
	assert.Equal(t, BRL, m.Currency())
	assert.Equal(t, "99.90 BRL", m.String())

	_, err = NewMoneyBRLFromString("abc")
	assert.Error(t, err)
}

func TestMoneyAddSubtract(t *testing.T) {
	a := NewMoneyBRL(decimal.NewFromFloat(150.25))
	b := NewMoneyBRL(decimal.NewFromFloat(30.25))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Amount().Equal(decimal.NewFromFloat(180.5)))

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.Equals(NewMoneyBRL(decimal.NewFromInt(120))))

	usd, _ := NewMoney(decimal.NewFromInt(1), USD)
	_, err = a.Add(usd)
	assert.Error(t, err)
	_, err = a.Subtract(usd)
	assert.Error(t, err)
}

func TestMoneySign(t *testing.T) {
	assert.True(t, NewMoneyBRL(decimal.Zero).IsZero())
	assert.True(t, NewMoneyBRL(decimal.NewFromInt(1)).IsPositive())
	assert.True(t, NewMoneyBRL(decimal.NewFromInt(-1)).IsNegative())
}

func TestMoneyAllocate(t *testing.T) {
	t.Run("splits evenly", func(t *testing.T) {
		parts, err := NewMoneyBRL(decimal.NewFromInt(90)).Allocate(3)
		require.NoError(t, err)
		require.Len(t, parts, 3)
		for _, p := range parts {
			assert.True(t, p.Amount().Equal(decimal.NewFromInt(30)))
		}
	})

	t.Run("spreads remainder cents over the first parts", func(t *testing.T) {
		parts, err := NewMoneyBRL(decimal.NewFromInt(100)).Allocate(3)
		require.NoError(t, err)
		assert.Equal(t, "33.34", parts[0].Amount().StringFixed(2))
		assert.Equal(t, "33.33", parts[1].Amount().StringFixed(2))
		assert.Equal(t, "33.33", parts[2].Amount().StringFixed(2))

		total := decimal.Zero
		for _, p := range parts {
			total = total.Add(p.Amount())
		}
		assert.True(t, total.Equal(decimal.NewFromInt(100)))
	})

	t.Run("rejects non-positive parts", func(t *testing.T) {
		_, err := NewMoneyBRL(decimal.NewFromInt(100)).Allocate(0)
		assert.Error(t, err)
	})
}

func TestMoneyFormat(t *testing.T) {
	formatted := NewMoneyBRL(decimal.NewFromFloat(1120)).Format(language.BrazilianPortuguese)
	assert.Contains(t, formatted, "R$")

	m := Money{amount: decimal.NewFromInt(5), currency: Currency("XX1")}
	assert.Equal(t, "5.00 XX1", m.Format(language.English))
}

func TestPaymentMethod(t *testing.T) {
	tests := []struct {
		method       PaymentMethod
		valid        bool
		cash         bool
		installments bool
	}{
		{PaymentCash, true, true, false},
		{PaymentDebitCard, true, false, false},
		{PaymentCreditCard, true, false, true},
		{PaymentBoleto, true, false, true},
		{PaymentPix, true, false, false},
		{PaymentMethod("CHEQUE"), false, false, false},
		{PaymentMethod(""), false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.method), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.method.IsValid())
			assert.Equal(t, tt.cash, tt.method.IsCash())
			assert.Equal(t, tt.installments, tt.method.AllowsInstallments())
		})
	}
}
