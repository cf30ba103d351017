package slots

import (
	"errors"
	"time"

	"meetcal/internal/availability"
	"meetcal/internal/models"
)

// ErrInvalidInterval rejects granularities outside {15, 30, 60} minutes.
var ErrInvalidInterval = errors.New("interval must be 15, 30 or 60 minutes")

// ListBookableSlots computes the bookable "HH:MM" start times for a date:
// index the rules, resolve the date's windows, quantize them, then drop
// candidates conflicting with confirmed bookings. Rules that failed
// validation are reported back so the caller can warn without aborting.
// Pure function of its inputs.
func ListBookableSlots(
	rules []models.AvailabilityRule,
	bookings []models.Booking,
	date time.Time,
	intervalMinutes int,
) ([]string, []*models.InvalidRuleError, error) {
	if !ValidInterval(intervalMinutes) {
		return nil, nil, ErrInvalidInterval
	}

	index, skipped := availability.BuildIndex(rules)

	dayAvail := index.Resolve(date)
	if !dayAvail.Bookable {
		return []string{}, skipped, nil
	}

	candidates := GenerateAll(dayAvail.Windows, intervalMinutes)
	return Filter(candidates, date, intervalMinutes, bookings), skipped, nil
}

// IsDateAvailable reports whether any rule makes the date bookable,
// regardless of bookings.
func IsDateAvailable(rules []models.AvailabilityRule, date time.Time) (bool, []*models.InvalidRuleError) {
	index, skipped := availability.BuildIndex(rules)
	return index.IsDateAvailable(date), skipped
}
