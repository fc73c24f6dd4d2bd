package enums

import "fmt"

// PaymentPurpose maps to the payment_purpose enum in Postgres. It records which
// mutation consumed a payment reference.
type PaymentPurpose string

const (
	PaymentPurposeMint        PaymentPurpose = "mint"
	PaymentPurposeAppend      PaymentPurpose = "append"
	PaymentPurposeBatchAppend PaymentPurpose = "batch_append"
	PaymentPurposeRefresh     PaymentPurpose = "refresh"
)

var validPaymentPurposes = []PaymentPurpose{
	PaymentPurposeMint,
	PaymentPurposeAppend,
	PaymentPurposeBatchAppend,
	PaymentPurposeRefresh,
}

// IsValid reports whether the value matches the canonical payment_purpose enum.
func (p PaymentPurpose) IsValid() bool {
	for _, candidate := range validPaymentPurposes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentPurpose converts raw input into PaymentPurpose.
func ParsePaymentPurpose(value string) (PaymentPurpose, error) {
	for _, candidate := range validPaymentPurposes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment purpose %q", value)
}
