package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Availability rule types.
const (
	RuleRecurring    = "RECURRING"
	RuleDateRange    = "DATE_RANGE"
	RuleSpecificDate = "SPECIFIC_DATE"
)

// Booking statuses. Only confirmed bookings block slots.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// AvailabilityRule is one stored availability record of a host.
type AvailabilityRule struct {
	ID        int64      `json:"id"`
	HostID    string     `json:"host_id"`
	Type      string     `json:"type"` // RECURRING, DATE_RANGE, SPECIFIC_DATE
	DayOfWeek *int       `json:"day_of_week,omitempty"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	StartTime string     `json:"start_time"` // "09:00"
	EndTime   string     `json:"end_time"`   // "17:00"
	CreatedAt time.Time  `json:"created_at"`
}

// TimeWindow is one bookable interval within a day.
type TimeWindow struct {
	Start string `json:"start"` // "09:00"
	End   string `json:"end"`   // "17:00"
}

// DayAvailability is the resolved availability of one calendar date.
type DayAvailability struct {
	Bookable bool         `json:"bookable"`
	Windows  []TimeWindow `json:"windows"`
}

// Booking represents a guest booking against a host's calendar.
type Booking struct {
	ID         int64     `json:"id"`
	Reference  string    `json:"reference"`
	HostID     string    `json:"host_id"`
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// InvalidRuleError reports a stored rule that cannot participate in
// availability resolution. Callers skip the rule instead of aborting.
type InvalidRuleError struct {
	RuleID int64
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid availability rule %d: %s", e.RuleID, e.Reason)
}

// Validate checks the type-dependent field invariants and the time window.
// Returns *InvalidRuleError on failure.
func (r *AvailabilityRule) Validate() error {
	switch r.Type {
	case RuleRecurring:
		if r.DayOfWeek == nil {
			return &InvalidRuleError{RuleID: r.ID, Reason: "recurring rule requires day_of_week"}
		}
		if *r.DayOfWeek < 0 || *r.DayOfWeek > 6 {
			return &InvalidRuleError{RuleID: r.ID, Reason: fmt.Sprintf("day_of_week %d out of range 0-6", *r.DayOfWeek)}
		}
	case RuleDateRange:
		if r.StartDate == nil || r.EndDate == nil {
			return &InvalidRuleError{RuleID: r.ID, Reason: "date range rule requires start_date and end_date"}
		}
		if r.StartDate.After(*r.EndDate) {
			return &InvalidRuleError{RuleID: r.ID, Reason: "start_date is after end_date"}
		}
	case RuleSpecificDate:
		if r.StartDate == nil {
			return &InvalidRuleError{RuleID: r.ID, Reason: "specific date rule requires start_date"}
		}
	default:
		return &InvalidRuleError{RuleID: r.ID, Reason: fmt.Sprintf("unknown rule type %q", r.Type)}
	}

	start, err := ParseClock(r.StartTime)
	if err != nil {
		return &InvalidRuleError{RuleID: r.ID, Reason: fmt.Sprintf("bad start_time: %v", err)}
	}
	end, err := ParseClock(r.EndTime)
	if err != nil {
		return &InvalidRuleError{RuleID: r.ID, Reason: fmt.Sprintf("bad end_time: %v", err)}
	}
	if start >= end {
		return &InvalidRuleError{RuleID: r.ID, Reason: "start_time must be before end_time"}
	}
	return nil
}

// Window returns the rule's time window.
func (r *AvailabilityRule) Window() TimeWindow {
	return TimeWindow{Start: r.StartTime, End: r.EndTime}
}

// ParseClock parses an "HH:MM" wall-clock string into minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ClockOnDate combines a calendar date with an "HH:MM" string.
func ClockOnDate(date time.Time, clock string) (time.Time, error) {
	minutes, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, date.Location()), nil
}

// StartOfDay truncates a timestamp to midnight, keeping its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// Overlaps checks if the booking overlaps the half-open interval [start, end).
// Abutting edges do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.EndTime) && b.StartTime.Before(end)
}

// IsConfirmed reports whether the booking blocks slots.
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}
