package validators

import (
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/lifecert/lifecert-backend/pkg/errors"
)

var centsPerUnit = decimal.NewFromInt(100)

// ParseAmountCents converts a decimal currency string ("12.34") into integer
// cents. Sub-cent precision is rejected rather than rounded so the caller can
// never attach an amount the ledger cannot represent exactly.
func ParseAmountCents(field, raw string) (int64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount is required").WithDetails(map[string]any{"field": field})
	}

	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "amount must be a decimal number").WithDetails(map[string]any{"field": field})
	}
	if amount.IsNegative() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative").WithDetails(map[string]any{"field": field})
	}

	cents := amount.Mul(centsPerUnit)
	if !cents.IsInteger() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount precision is limited to cents").WithDetails(map[string]any{"field": field})
	}
	if !cents.BigInt().IsInt64() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "amount out of range").WithDetails(map[string]any{"field": field})
	}

	return cents.IntPart(), nil
}

// FormatCents renders integer cents back into the decimal string form used on
// the wire.
func FormatCents(cents int64) string {
	return decimal.NewFromInt(cents).Div(centsPerUnit).StringFixed(2)
}
