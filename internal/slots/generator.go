// Package slots computes bookable time slots from resolved availability
// windows and filters them against confirmed bookings.
package slots

import (
	"meetcal/internal/models"
)

// Valid slot granularities in minutes.
var validIntervals = map[int]bool{15: true, 30: true, 60: true}

// ValidInterval reports whether an interval is one of 15, 30 or 60 minutes.
func ValidInterval(minutes int) bool {
	return validIntervals[minutes]
}

// Generate quantizes a window into "HH:MM" start times. A start is emitted
// only when the whole slot fits: the last slot's end may equal the window
// end, a trailing partial slot is dropped. Windows that fail to parse yield
// no slots; the index validates rules before windows reach here.
func Generate(window models.TimeWindow, intervalMinutes int) []string {
	if intervalMinutes <= 0 {
		return nil
	}

	start, err := models.ParseClock(window.Start)
	if err != nil {
		return nil
	}
	end, err := models.ParseClock(window.End)
	if err != nil {
		return nil
	}

	var starts []string
	for cursor := start; cursor+intervalMinutes <= end; cursor += intervalMinutes {
		starts = append(starts, models.FormatClock(cursor))
	}
	return starts
}

// GenerateAll generates each window independently and concatenates the
// results in window order.
func GenerateAll(windows []models.TimeWindow, intervalMinutes int) []string {
	var starts []string
	for _, window := range windows {
		starts = append(starts, Generate(window, intervalMinutes)...)
	}
	return starts
}
