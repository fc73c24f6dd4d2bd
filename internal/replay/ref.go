package replay

import (
	"strings"

	apperrors "github.com/lifecert/lifecert-backend/pkg/errors"
)

// RefLength is the canonical width of a payment reference in hex characters.
const RefLength = 64

const zeroRef = "0000000000000000000000000000000000000000000000000000000000000000"

// NormalizeRef canonicalizes a payment reference: trims whitespace, strips an
// optional 0x prefix, and lowercases. The zero sentinel is rejected the same
// way an empty reference is.
func NormalizeRef(raw string) (string, error) {
	ref := strings.TrimSpace(raw)
	ref = strings.TrimPrefix(ref, "0x")
	ref = strings.ToLower(ref)

	if ref == "" {
		return "", apperrors.New(apperrors.CodeValidation, "payment reference is required")
	}
	if len(ref) != RefLength {
		return "", apperrors.New(apperrors.CodeValidation, "payment reference must be a 64-character hex string")
	}
	for _, c := range ref {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", apperrors.New(apperrors.CodeValidation, "payment reference must be a 64-character hex string")
		}
	}
	if ref == zeroRef {
		return "", apperrors.New(apperrors.CodeValidation, "payment reference must not be the zero sentinel")
	}
	return ref, nil
}
