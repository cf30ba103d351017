package database

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetcal/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func intPtr(i int) *int { return &i }

func TestRules_CreateListDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &models.AvailabilityRule{
		HostID: "host-1", Type: models.RuleRecurring, DayOfWeek: intPtr(1),
		StartTime: "09:00", EndTime: "17:00",
	}
	require.NoError(t, db.CreateRule(ctx, first))
	assert.NotZero(t, first.ID)

	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	second := &models.AvailabilityRule{
		HostID: "host-1", Type: models.RuleDateRange, StartDate: &start, EndDate: &end,
		StartTime: "08:00", EndTime: "09:00",
	}
	require.NoError(t, db.CreateRule(ctx, second))

	other := &models.AvailabilityRule{
		HostID: "host-2", Type: models.RuleRecurring, DayOfWeek: intPtr(3),
		StartTime: "10:00", EndTime: "12:00",
	}
	require.NoError(t, db.CreateRule(ctx, other))

	rules, err := db.ListRules(ctx, "host-1")
	require.NoError(t, err)
	require.Len(t, rules, 2)

	// Most recently created first.
	assert.Equal(t, second.ID, rules[0].ID)
	assert.Equal(t, first.ID, rules[1].ID)

	// Nullable fields round-trip.
	require.NotNil(t, rules[1].DayOfWeek)
	assert.Equal(t, 1, *rules[1].DayOfWeek)
	assert.Nil(t, rules[1].StartDate)
	require.NotNil(t, rules[0].StartDate)
	assert.True(t, rules[0].StartDate.Equal(start))

	require.NoError(t, db.DeleteRule(ctx, first.ID, "host-1"))
	rules, err = db.ListRules(ctx, "host-1")
	require.NoError(t, err)
	assert.Len(t, rules, 1)

	// Deleting again, or with the wrong host, reports not found.
	assert.ErrorIs(t, db.DeleteRule(ctx, first.ID, "host-1"), ErrRuleNotFound)
	assert.ErrorIs(t, db.DeleteRule(ctx, second.ID, "host-2"), ErrRuleNotFound)
}

func testBooking(host string, day time.Time, startClock, endClock, status string) *models.Booking {
	start, _ := models.ClockOnDate(day, startClock)
	end, _ := models.ClockOnDate(day, endClock)
	return &models.Booking{
		Reference:  "ref-" + host + "-" + day.Format("2006-01-02") + "-" + startClock,
		HostID:     host,
		GuestName:  "Guest",
		GuestEmail: "guest@example.com",
		StartTime:  start,
		EndTime:    end,
		Status:     status,
	}
}

func TestBookings_CreateAndFetchForDate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	confirmed := testBooking("host-1", day, "10:00", "11:00", models.StatusConfirmed)
	require.NoError(t, db.CreateBooking(ctx, confirmed))
	assert.NotZero(t, confirmed.ID)

	cancelled := testBooking("host-1", day, "12:00", "13:00", models.StatusCancelled)
	require.NoError(t, db.CreateBooking(ctx, cancelled))

	nextDay := testBooking("host-1", day.AddDate(0, 0, 1), "10:00", "11:00", models.StatusConfirmed)
	require.NoError(t, db.CreateBooking(ctx, nextDay))

	otherHost := testBooking("host-2", day, "10:00", "11:00", models.StatusConfirmed)
	require.NoError(t, db.CreateBooking(ctx, otherHost))

	got, err := db.GetConfirmedBookingsForDate(ctx, "host-1", day)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, confirmed.Reference, got[0].Reference)
}

func TestBookings_OverlapRejected(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.CreateBooking(ctx, testBooking("host-1", day, "10:00", "11:00", models.StatusConfirmed)))

	// Overlapping by half an hour.
	err := db.CreateBooking(ctx, testBooking("host-1", day, "10:30", "11:30", models.StatusConfirmed))
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Abutting is fine.
	require.NoError(t, db.CreateBooking(ctx, testBooking("host-1", day, "11:00", "12:00", models.StatusConfirmed)))

	// Overlapping a cancelled booking is fine.
	require.NoError(t, db.CreateBooking(ctx, testBooking("host-1", day, "14:00", "15:00", models.StatusCancelled)))
	require.NoError(t, db.CreateBooking(ctx, func() *models.Booking {
		b := testBooking("host-1", day, "14:00", "15:00", models.StatusConfirmed)
		b.Reference = "ref-distinct"
		return b
	}()))
}

func TestBookings_DuplicateReferenceRejected(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.CreateBooking(ctx, testBooking("host-1", day, "10:00", "11:00", models.StatusConfirmed)))

	// Same reference on another day must be rejected by the unique column,
	// even though the times do not overlap.
	dup := testBooking("host-1", day.AddDate(0, 0, 1), "10:00", "11:00", models.StatusConfirmed)
	dup.Reference = testBooking("host-1", day, "10:00", "11:00", models.StatusConfirmed).Reference
	assert.Error(t, db.CreateBooking(ctx, dup))
}

func TestBookings_ByReferenceAndStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	day := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	booking := testBooking("host-1", day, "10:00", "11:00", models.StatusConfirmed)
	require.NoError(t, db.CreateBooking(ctx, booking))

	got, err := db.GetBookingByReference(ctx, booking.Reference)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)

	_, err = db.GetBookingByReference(ctx, "missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)

	require.NoError(t, db.UpdateBookingStatus(ctx, booking.ID, models.StatusCancelled))
	got, err = db.GetBookingByReference(ctx, booking.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)

	assert.True(t, errors.Is(db.UpdateBookingStatus(ctx, 9999, models.StatusCancelled), ErrBookingNotFound))
}

func TestBookings_ByDateRange(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for d := 1; d <= 5; d++ {
		day := time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
		require.NoError(t, db.CreateBooking(ctx, testBooking("host-1", day, "10:00", "11:00", models.StatusConfirmed)))
	}

	got, err := db.GetBookingsByDateRange(ctx, "host-1",
		time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
