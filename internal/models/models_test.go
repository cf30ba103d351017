package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intPtr(i int) *int { return &i }

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	return &t
}

func TestAvailabilityRule_Validate(t *testing.T) {
	tests := []struct {
		name       string
		rule       AvailabilityRule
		wantErr    bool
		wantReason string
	}{
		{
			name: "valid recurring",
			rule: AvailabilityRule{ID: 1, Type: RuleRecurring, DayOfWeek: intPtr(1), StartTime: "09:00", EndTime: "17:00"},
		},
		{
			name:       "recurring without day",
			rule:       AvailabilityRule{ID: 2, Type: RuleRecurring, StartTime: "09:00", EndTime: "17:00"},
			wantErr:    true,
			wantReason: "recurring rule requires day_of_week",
		},
		{
			name:    "recurring day out of range",
			rule:    AvailabilityRule{ID: 3, Type: RuleRecurring, DayOfWeek: intPtr(7), StartTime: "09:00", EndTime: "17:00"},
			wantErr: true,
		},
		{
			name: "valid date range",
			rule: AvailabilityRule{ID: 4, Type: RuleDateRange, StartDate: datePtr(2024, 6, 1), EndDate: datePtr(2024, 6, 10), StartTime: "08:00", EndTime: "09:00"},
		},
		{
			name:       "date range missing end",
			rule:       AvailabilityRule{ID: 5, Type: RuleDateRange, StartDate: datePtr(2024, 6, 1), StartTime: "08:00", EndTime: "09:00"},
			wantErr:    true,
			wantReason: "date range rule requires start_date and end_date",
		},
		{
			name:    "date range reversed",
			rule:    AvailabilityRule{ID: 6, Type: RuleDateRange, StartDate: datePtr(2024, 6, 10), EndDate: datePtr(2024, 6, 1), StartTime: "08:00", EndTime: "09:00"},
			wantErr: true,
		},
		{
			name: "valid specific date",
			rule: AvailabilityRule{ID: 7, Type: RuleSpecificDate, StartDate: datePtr(2024, 6, 5), StartTime: "13:00", EndTime: "15:00"},
		},
		{
			name:    "specific date missing date",
			rule:    AvailabilityRule{ID: 8, Type: RuleSpecificDate, StartTime: "13:00", EndTime: "15:00"},
			wantErr: true,
		},
		{
			name:    "unknown type",
			rule:    AvailabilityRule{ID: 9, Type: "WEEKLY", StartTime: "09:00", EndTime: "17:00"},
			wantErr: true,
		},
		{
			name:    "unparseable start time",
			rule:    AvailabilityRule{ID: 10, Type: RuleRecurring, DayOfWeek: intPtr(1), StartTime: "9am", EndTime: "17:00"},
			wantErr: true,
		},
		{
			name:    "start not before end",
			rule:    AvailabilityRule{ID: 11, Type: RuleRecurring, DayOfWeek: intPtr(1), StartTime: "17:00", EndTime: "09:00"},
			wantErr: true,
		},
		{
			name:    "equal start and end",
			rule:    AvailabilityRule{ID: 12, Type: RuleRecurring, DayOfWeek: intPtr(1), StartTime: "09:00", EndTime: "09:00"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rule.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			var ruleErr *InvalidRuleError
			assert.True(t, errors.As(err, &ruleErr))
			assert.Equal(t, tt.rule.ID, ruleErr.RuleID)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, ruleErr.Reason)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"12", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "09:05", FormatClock(545))
	assert.Equal(t, "16:00", FormatClock(960))
}

func TestClockOnDate(t *testing.T) {
	date := time.Date(2024, 6, 3, 15, 42, 7, 0, time.Local)
	got, err := ClockOnDate(date, "09:30")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 3, 9, 30, 0, 0, time.Local), got)

	_, err = ClockOnDate(date, "bogus")
	assert.Error(t, err)
}

func TestBooking_Overlaps(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.Local)
	booking := Booking{
		StartTime: day.Add(10 * time.Hour),
		EndTime:   day.Add(11 * time.Hour),
	}

	// Abutting edges are not conflicts.
	assert.False(t, booking.Overlaps(day.Add(9*time.Hour), day.Add(10*time.Hour)))
	assert.False(t, booking.Overlaps(day.Add(11*time.Hour), day.Add(12*time.Hour)))

	// One minute of overlap is a conflict.
	assert.True(t, booking.Overlaps(day.Add(10*time.Hour+59*time.Minute), day.Add(12*time.Hour)))
	assert.True(t, booking.Overlaps(day.Add(9*time.Hour), day.Add(10*time.Hour+time.Minute)))

	// Containment either way.
	assert.True(t, booking.Overlaps(day.Add(10*time.Hour+15*time.Minute), day.Add(10*time.Hour+30*time.Minute)))
	assert.True(t, booking.Overlaps(day.Add(9*time.Hour), day.Add(13*time.Hour)))
}
