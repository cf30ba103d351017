package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meetcal/internal/models"
)

// CreateRule persists a new availability rule and fills in its ID.
func (db *DB) CreateRule(ctx context.Context, rule *models.AvailabilityRule) error {
	now := time.Now()
	result, err := db.ExecContext(ctx, `
		INSERT INTO availability_rules (host_id, type, day_of_week, start_date, end_date, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.HostID, rule.Type, rule.DayOfWeek, rule.StartDate, rule.EndDate,
		rule.StartTime, rule.EndTime, now,
	)
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("rule id: %w", err)
	}
	rule.ID = id
	rule.CreatedAt = now
	return nil
}

// DeleteRule removes one of a host's rules.
func (db *DB) DeleteRule(ctx context.Context, id int64, hostID string) error {
	result, err := db.ExecContext(ctx,
		"DELETE FROM availability_rules WHERE id = ? AND host_id = ?",
		id, hostID,
	)
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// ListRules returns a host's rules, most recently created first. The slot
// engine's first-match precedence relies on this order.
func (db *DB) ListRules(ctx context.Context, hostID string) ([]models.AvailabilityRule, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, host_id, type, day_of_week, start_date, end_date, start_time, end_time, created_at
		FROM availability_rules
		WHERE host_id = ?
		ORDER BY created_at DESC, id DESC`,
		hostID,
	)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var rules []models.AvailabilityRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

func scanRule(rows *sql.Rows) (*models.AvailabilityRule, error) {
	var r models.AvailabilityRule
	var dayOfWeek sql.NullInt64
	var startDate, endDate sql.NullTime

	if err := rows.Scan(
		&r.ID, &r.HostID, &r.Type, &dayOfWeek, &startDate, &endDate,
		&r.StartTime, &r.EndTime, &r.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan rule: %w", err)
	}

	if dayOfWeek.Valid {
		day := int(dayOfWeek.Int64)
		r.DayOfWeek = &day
	}
	if startDate.Valid {
		t := startDate.Time
		r.StartDate = &t
	}
	if endDate.Valid {
		t := endDate.Time
		r.EndDate = &t
	}
	return &r, nil
}
