package valueobject

// PaymentMethod identifies how a sale was settled
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentBoleto     PaymentMethod = "BOLETO"
	PaymentPix        PaymentMethod = "PIX"
)

// IsValid checks if the payment method is known
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCash, PaymentDebitCard, PaymentCreditCard, PaymentBoleto, PaymentPix:
		return true
	}
	return false
}

// IsCash reports whether the method moves physical cash through the register
func (p PaymentMethod) IsCash() bool {
	return p == PaymentCash
}

// AllowsInstallments reports whether the method settles in scheduled installments
func (p PaymentMethod) AllowsInstallments() bool {
	return p == PaymentCreditCard || p == PaymentBoleto
}

// String returns the string representation of PaymentMethod
func (p PaymentMethod) String() string {
	return string(p)
}
