package pricing

import (
	"github.com/lifecert/lifecert-backend/pkg/db/models"
)

// Resolve returns the required amount for a single-course mutation: the
// course's price override when one is set above zero, otherwise the provided
// platform default. Resolution is always against current state; there is no
// historical snapshot.
func Resolve(course *models.Course, defaultCents int64) int64 {
	if course != nil && course.PriceOverrideCents != nil && *course.PriceOverrideCents > 0 {
		return *course.PriceOverrideCents
	}
	return defaultCents
}

// BatchTotal prices a batch append at the flat append default per course.
// Per-course overrides are deliberately ignored on this path; only the
// single-course append honors them.
func BatchTotal(appendDefaultCents int64, count int) int64 {
	if count <= 0 {
		return 0
	}
	return appendDefaultCents * int64(count)
}
