package availability

import (
	"time"

	"meetcal/internal/models"
)

// Resolve decides whether a calendar date is bookable and which windows
// apply. Precedence, first match wins:
//
//  1. recurring windows for the date's weekday
//  2. the first specific-date entry matching the date
//  3. the first date-range entry containing the date
//
// Date comparison is at day granularity; time-of-day stored on rule dates is
// irrelevant. A weekday with no recurring windows can still be unlocked by a
// specific-date or date-range entry.
func (ix *Index) Resolve(date time.Time) models.DayAvailability {
	if windows := ix.weekly[int(date.Weekday())]; len(windows) > 0 {
		return models.DayAvailability{Bookable: true, Windows: windows}
	}

	day := models.StartOfDay(date)

	for _, entry := range ix.singles {
		if models.SameDay(entry.date, day) {
			return models.DayAvailability{Bookable: true, Windows: []models.TimeWindow{entry.window}}
		}
	}

	for _, entry := range ix.ranges {
		if containsDay(entry.start, entry.end, day) {
			return models.DayAvailability{Bookable: true, Windows: []models.TimeWindow{entry.window}}
		}
	}

	return models.DayAvailability{Bookable: false, Windows: []models.TimeWindow{}}
}

// IsDateAvailable is the existence projection of Resolve, used for
// disabled-date calendar rendering.
func (ix *Index) IsDateAvailable(date time.Time) bool {
	if len(ix.weekly[int(date.Weekday())]) > 0 {
		return true
	}

	day := models.StartOfDay(date)

	for _, entry := range ix.singles {
		if models.SameDay(entry.date, day) {
			return true
		}
	}
	for _, entry := range ix.ranges {
		if containsDay(entry.start, entry.end, day) {
			return true
		}
	}
	return false
}

// containsDay checks day membership in [start 00:00, end 23:59:59.999]; the
// range start truncates and the range end extends to its day boundary.
func containsDay(start, end, day time.Time) bool {
	startDay := models.StartOfDay(start)
	endDay := models.StartOfDay(end)
	return !day.Before(startDay) && !day.After(endDay)
}
