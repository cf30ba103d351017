package slots

import (
	"testing"
	"time"

	"meetcal/internal/models"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		window   models.TimeWindow
		interval int
		expected []string
	}{
		{
			name:     "full workday hourly",
			window:   models.TimeWindow{Start: "09:00", End: "17:00"},
			interval: 60,
			expected: []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"},
		},
		{
			name:     "half hour slots",
			window:   models.TimeWindow{Start: "13:00", End: "15:00"},
			interval: 30,
			expected: []string{"13:00", "13:30", "14:00", "14:30"},
		},
		{
			name:     "quarter hour slots",
			window:   models.TimeWindow{Start: "08:00", End: "09:00"},
			interval: 15,
			expected: []string{"08:00", "08:15", "08:30", "08:45"},
		},
		{
			name:     "window shorter than interval",
			window:   models.TimeWindow{Start: "09:00", End: "09:10"},
			interval: 15,
			expected: nil,
		},
		{
			name:     "trailing partial slot dropped",
			window:   models.TimeWindow{Start: "09:00", End: "10:45"},
			interval: 30,
			expected: []string{"09:00", "09:30", "10:00"},
		},
		{
			name:     "last slot ends exactly at window end",
			window:   models.TimeWindow{Start: "09:00", End: "10:00"},
			interval: 30,
			expected: []string{"09:00", "09:30"},
		},
		{
			name:     "unparseable window",
			window:   models.TimeWindow{Start: "morning", End: "noon"},
			interval: 30,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.window, tt.interval)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d slots, got %d: %v", len(tt.expected), len(got), got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("slot %d: expected %s, got %s", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestGenerateAll_WindowOrder(t *testing.T) {
	windows := []models.TimeWindow{
		{Start: "13:00", End: "14:00"},
		{Start: "09:00", End: "10:00"},
	}

	got := GenerateAll(windows, 30)
	expected := []string{"13:00", "13:30", "09:00", "09:30"}

	if len(got) != len(expected) {
		t.Fatalf("expected %d slots, got %d", len(expected), len(got))
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Errorf("slot %d: expected %s, got %s (windows must concatenate in order)", i, expected[i], got[i])
		}
	}
}

func TestValidInterval(t *testing.T) {
	for _, valid := range []int{15, 30, 60} {
		if !ValidInterval(valid) {
			t.Errorf("interval %d should be valid", valid)
		}
	}
	for _, invalid := range []int{0, -30, 10, 20, 45, 90, 120} {
		if ValidInterval(invalid) {
			t.Errorf("interval %d should be invalid", invalid)
		}
	}
}

func confirmed(day time.Time, start, end string) models.Booking {
	s, _ := models.ClockOnDate(day, start)
	e, _ := models.ClockOnDate(day, end)
	return models.Booking{StartTime: s, EndTime: e, Status: models.StatusConfirmed}
}

func TestFilter(t *testing.T) {
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.Local)
	candidates := []string{"09:00", "10:00", "11:00", "12:00"}

	tests := []struct {
		name     string
		bookings []models.Booking
		interval int
		expected []string
	}{
		{
			name:     "no bookings",
			bookings: nil,
			interval: 60,
			expected: []string{"09:00", "10:00", "11:00", "12:00"},
		},
		{
			name:     "one booked hour removed",
			bookings: []models.Booking{confirmed(day, "10:00", "11:00")},
			interval: 60,
			expected: []string{"09:00", "11:00", "12:00"},
		},
		{
			name: "abutting booking does not conflict",
			bookings: []models.Booking{
				confirmed(day, "08:00", "09:00"),
				confirmed(day, "13:00", "14:00"),
			},
			interval: 60,
			expected: []string{"09:00", "10:00", "11:00", "12:00"},
		},
		{
			name:     "one minute overlap conflicts",
			bookings: []models.Booking{confirmed(day, "10:59", "11:01")},
			interval: 60,
			expected: []string{"09:00", "12:00"},
		},
		{
			name:     "booking spanning several slots",
			bookings: []models.Booking{confirmed(day, "09:30", "11:30")},
			interval: 60,
			expected: []string{"12:00"},
		},
		{
			name: "non-confirmed statuses ignored",
			bookings: []models.Booking{
				{StartTime: mustClock(day, "09:00"), EndTime: mustClock(day, "10:00"), Status: models.StatusPending},
				{StartTime: mustClock(day, "10:00"), EndTime: mustClock(day, "11:00"), Status: models.StatusCancelled},
			},
			interval: 60,
			expected: []string{"09:00", "10:00", "11:00", "12:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(candidates, day, tt.interval, tt.bookings)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("slot %d: expected %s, got %s", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func mustClock(day time.Time, clock string) time.Time {
	t, err := models.ClockOnDate(day, clock)
	if err != nil {
		panic(err)
	}
	return t
}
