// Package availability resolves a host's heterogeneous availability rules
// into per-date bookable windows.
package availability

import (
	"time"

	"meetcal/internal/models"
)

type dateRangeEntry struct {
	start  time.Time
	end    time.Time
	window models.TimeWindow
}

type specificDateEntry struct {
	date   time.Time
	window models.TimeWindow
}

// Index aggregates one host's rules into a queryable structure. It is built
// fresh per query from a rule snapshot and never mutated afterwards.
type Index struct {
	// weekly maps weekday 0-6 (Sunday-Saturday) to recurring windows in
	// rule order. Multiple windows per day are allowed.
	weekly  map[int][]models.TimeWindow
	ranges  []dateRangeEntry
	singles []specificDateEntry
}

// BuildIndex partitions rules by type. Rules that fail validation are
// skipped and reported; they never silently contribute windows.
// Input order is preserved within each partition because resolution uses
// first-match precedence for date entries.
func BuildIndex(rules []models.AvailabilityRule) (*Index, []*models.InvalidRuleError) {
	ix := &Index{weekly: make(map[int][]models.TimeWindow)}
	var skipped []*models.InvalidRuleError

	for _, rule := range rules {
		if err := rule.Validate(); err != nil {
			if ruleErr, ok := err.(*models.InvalidRuleError); ok {
				skipped = append(skipped, ruleErr)
			} else {
				skipped = append(skipped, &models.InvalidRuleError{RuleID: rule.ID, Reason: err.Error()})
			}
			continue
		}

		switch rule.Type {
		case models.RuleRecurring:
			day := *rule.DayOfWeek
			ix.weekly[day] = append(ix.weekly[day], rule.Window())
		case models.RuleDateRange:
			ix.ranges = append(ix.ranges, dateRangeEntry{
				start:  *rule.StartDate,
				end:    *rule.EndDate,
				window: rule.Window(),
			})
		case models.RuleSpecificDate:
			// end_date on specific date rows is ignored; the UI writes it
			// equal to start_date.
			ix.singles = append(ix.singles, specificDateEntry{
				date:   *rule.StartDate,
				window: rule.Window(),
			})
		}
	}

	return ix, skipped
}

// RecurringWindows returns the recurring windows for a weekday, or nil.
func (ix *Index) RecurringWindows(dayOfWeek int) []models.TimeWindow {
	return ix.weekly[dayOfWeek]
}
