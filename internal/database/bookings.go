package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meetcal/internal/models"
)

// CreateBooking inserts a booking after an overlap check, both inside one
// transaction so concurrent requests cannot double-book a slot.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE host_id = ?
		AND start_time < ? AND end_time > ?
		AND status = ?`,
		booking.HostID, booking.EndTime, booking.StartTime, models.StatusConfirmed,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("overlap check: %w", err)
	}
	if count > 0 {
		return ErrSlotTaken
	}

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (reference, host_id, guest_name, guest_email, start_time, end_time, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.Reference, booking.HostID, booking.GuestName, booking.GuestEmail,
		booking.StartTime, booking.EndTime, booking.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("booking id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}

	booking.ID = id
	booking.CreatedAt = now
	booking.UpdatedAt = now
	return nil
}

// GetConfirmedBookingsForDate returns a host's confirmed bookings whose
// start falls on the given calendar day.
func (db *DB) GetConfirmedBookingsForDate(ctx context.Context, hostID string, date time.Time) ([]models.Booking, error) {
	startOfDay := models.StartOfDay(date)
	endOfDay := startOfDay.Add(24 * time.Hour)

	rows, err := db.QueryContext(ctx, `
		SELECT id, reference, host_id, guest_name, guest_email, start_time, end_time, status, created_at, updated_at
		FROM bookings
		WHERE host_id = ?
		AND start_time >= ? AND start_time < ?
		AND status = ?
		ORDER BY start_time`,
		hostID, startOfDay, endOfDay, models.StatusConfirmed,
	)
	if err != nil {
		return nil, fmt.Errorf("bookings for date: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// GetBookingsByDateRange returns a host's bookings in [from, to] regardless
// of status, for reporting.
func (db *DB) GetBookingsByDateRange(ctx context.Context, hostID string, from, to time.Time) ([]models.Booking, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, reference, host_id, guest_name, guest_email, start_time, end_time, status, created_at, updated_at
		FROM bookings
		WHERE host_id = ?
		AND start_time >= ? AND start_time < ?
		ORDER BY start_time`,
		hostID, models.StartOfDay(from), models.StartOfDay(to).Add(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("bookings by range: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// GetBookingByReference looks up a booking by its public reference.
func (db *DB) GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, reference, host_id, guest_name, guest_email, start_time, end_time, status, created_at, updated_at
		FROM bookings
		WHERE reference = ?`,
		reference,
	)

	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBookingStatus changes a booking's status.
func (db *DB) UpdateBookingStatus(ctx context.Context, id int64, status string) error {
	result, err := db.ExecContext(ctx,
		"UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?",
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	if err := row.Scan(
		&b.ID, &b.Reference, &b.HostID, &b.GuestName, &b.GuestEmail,
		&b.StartTime, &b.EndTime, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}
