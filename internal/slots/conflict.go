package slots

import (
	"time"

	"meetcal/internal/models"
)

// Filter removes candidate slots that overlap a confirmed booking on the
// given date. A slot spans the half-open interval [date@HH:MM, +interval);
// it conflicts with a booking iff slotStart < bookingEnd && slotEnd >
// bookingStart, so abutting edges never conflict. Bookings in any other
// status are ignored. Stateless per call.
func Filter(candidates []string, date time.Time, intervalMinutes int, bookings []models.Booking) []string {
	filtered := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		slotStart, err := models.ClockOnDate(date, candidate)
		if err != nil {
			continue
		}
		slotEnd := slotStart.Add(time.Duration(intervalMinutes) * time.Minute)

		if !hasConflict(slotStart, slotEnd, bookings) {
			filtered = append(filtered, candidate)
		}
	}
	return filtered
}

func hasConflict(slotStart, slotEnd time.Time, bookings []models.Booking) bool {
	for i := range bookings {
		if !bookings[i].IsConfirmed() {
			continue
		}
		if bookings[i].Overlaps(slotStart, slotEnd) {
			return true
		}
	}
	return false
}
