// Package service orchestrates the slot engine against the persistence,
// cache and notification collaborators.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"meetcal/internal/availability"
	"meetcal/internal/cache"
	"meetcal/internal/database"
	"meetcal/internal/events"
	"meetcal/internal/metrics"
	"meetcal/internal/models"
	"meetcal/internal/slots"
)

var (
	ErrPastDate         = errors.New("cannot book in the past")
	ErrDateTooFar       = errors.New("date is too far in the future")
	ErrSlotNotAvailable = errors.New("slot is not available")
	ErrRangeTooLarge    = errors.New("date range exceeds the allowed maximum")
)

// DataUnavailableError distinguishes "could not determine availability" from
// "host is fully booked". The caller should not render it as an empty slot
// list.
type DataUnavailableError struct {
	Op  string
	Err error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("availability data unavailable (%s): %v", e.Op, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// Repository is the persistence collaborator.
type Repository interface {
	ListRules(ctx context.Context, hostID string) ([]models.AvailabilityRule, error)
	CreateRule(ctx context.Context, rule *models.AvailabilityRule) error
	DeleteRule(ctx context.Context, id int64, hostID string) error
	GetConfirmedBookingsForDate(ctx context.Context, hostID string, date time.Time) ([]models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, hostID string, from, to time.Time) ([]models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, status string) error
}

// EventBus publishes domain events.
type EventBus interface {
	PublishJSON(eventType string, payload interface{}) error
}

// NotificationQueue accepts bookings for asynchronous confirmation delivery.
type NotificationQueue interface {
	Enqueue(booking models.Booking) error
}

// DaySchedule is the resolved, conflict-filtered schedule of one date.
type DaySchedule struct {
	Date     string   `json:"date"`
	Interval int      `json:"interval"`
	Bookable bool     `json:"bookable"`
	Slots    []string `json:"slots"`
}

// DateAvailability is one entry of a range availability query.
type DateAvailability struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

// BookingService exposes the calendar operations to the HTTP layer.
type BookingService struct {
	repo       Repository
	bus        EventBus
	notify     NotificationQueue
	cache      *cache.SlotCache
	minAdvance time.Duration
	maxAdvance time.Duration
	maxRange   int
	logger     *zerolog.Logger
}

// NewBookingService wires the service. cache may be nil, notify may be nil.
func NewBookingService(
	repo Repository,
	bus EventBus,
	notify NotificationQueue,
	slotCache *cache.SlotCache,
	minAdvance, maxAdvance time.Duration,
	maxRangeDays int,
	logger *zerolog.Logger,
) *BookingService {
	if maxRangeDays <= 0 {
		maxRangeDays = 90
	}
	return &BookingService{
		repo:       repo,
		bus:        bus,
		notify:     notify,
		cache:      slotCache,
		minAdvance: minAdvance,
		maxAdvance: maxAdvance,
		maxRange:   maxRangeDays,
		logger:     logger,
	}
}

// GetDaySchedule computes the bookable slots of one date at the given
// granularity.
func (s *BookingService) GetDaySchedule(ctx context.Context, hostID string, date time.Time, intervalMinutes int) (*DaySchedule, error) {
	if !slots.ValidInterval(intervalMinutes) {
		return nil, slots.ErrInvalidInterval
	}

	dateStr := date.Format("2006-01-02")
	if cached, ok := s.cache.Get(ctx, hostID, dateStr, intervalMinutes); ok {
		return &DaySchedule{Date: dateStr, Interval: intervalMinutes, Bookable: cached.Bookable, Slots: cached.Slots}, nil
	}

	rules, err := s.repo.ListRules(ctx, hostID)
	if err != nil {
		metrics.IncSlotQuery("error")
		return nil, &DataUnavailableError{Op: "fetch availability rules", Err: err}
	}

	bookings, err := s.repo.GetConfirmedBookingsForDate(ctx, hostID, date)
	if err != nil {
		metrics.IncSlotQuery("error")
		return nil, &DataUnavailableError{Op: "fetch bookings", Err: err}
	}

	bookable, skipped, err := slots.ListBookableSlots(rules, bookings, date, intervalMinutes)
	if err != nil {
		return nil, err
	}
	s.reportSkipped(hostID, skipped)

	// A fully booked day is still bookable=true with zero slots; only a day
	// no rule covers reads as not bookable.
	hasWindows, _ := slots.IsDateAvailable(rules, date)

	schedule := &DaySchedule{
		Date:     dateStr,
		Interval: intervalMinutes,
		Bookable: hasWindows,
		Slots:    bookable,
	}
	if schedule.Bookable {
		metrics.IncSlotQuery("ok")
	} else {
		metrics.IncSlotQuery("closed")
	}

	s.cache.Set(ctx, hostID, dateStr, intervalMinutes, cache.DaySchedule{Bookable: schedule.Bookable, Slots: schedule.Slots})
	return schedule, nil
}

// IsDateAvailable reports whether any availability rule covers the date.
func (s *BookingService) IsDateAvailable(ctx context.Context, hostID string, date time.Time) (bool, error) {
	rules, err := s.repo.ListRules(ctx, hostID)
	if err != nil {
		return false, &DataUnavailableError{Op: "fetch availability rules", Err: err}
	}

	available, skipped := slots.IsDateAvailable(rules, date)
	s.reportSkipped(hostID, skipped)
	return available, nil
}

// GetDateRangeAvailability resolves per-date availability over an inclusive
// range, for disabled-date calendar rendering. The index is built once for
// the whole scan.
func (s *BookingService) GetDateRangeAvailability(ctx context.Context, hostID string, start, end time.Time) ([]DateAvailability, error) {
	days := int(models.StartOfDay(end).Sub(models.StartOfDay(start)).Hours() / 24)
	if days < 0 {
		return nil, fmt.Errorf("start date is after end date")
	}
	if days > s.maxRange {
		return nil, ErrRangeTooLarge
	}

	rules, err := s.repo.ListRules(ctx, hostID)
	if err != nil {
		return nil, &DataUnavailableError{Op: "fetch availability rules", Err: err}
	}

	index, skipped := availability.BuildIndex(rules)
	s.reportSkipped(hostID, skipped)

	result := make([]DateAvailability, 0, days+1)
	for d := models.StartOfDay(start); !d.After(models.StartOfDay(end)); d = d.AddDate(0, 0, 1) {
		result = append(result, DateAvailability{
			Date:      d.Format("2006-01-02"),
			Available: index.IsDateAvailable(d),
		})
	}
	return result, nil
}

// CreateRule validates and persists a new availability rule.
func (s *BookingService) CreateRule(ctx context.Context, rule *models.AvailabilityRule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		return &DataUnavailableError{Op: "create rule", Err: err}
	}

	s.cache.InvalidateHost(ctx, rule.HostID)
	if err := s.bus.PublishJSON(events.TypeRuleCreated, rule); err != nil {
		s.logger.Warn().Err(err).Msg("publish rule.created failed")
	}
	return nil
}

// DeleteRule removes a host's rule.
func (s *BookingService) DeleteRule(ctx context.Context, id int64, hostID string) error {
	if err := s.repo.DeleteRule(ctx, id, hostID); err != nil {
		return err
	}

	s.cache.InvalidateHost(ctx, hostID)
	if err := s.bus.PublishJSON(events.TypeRuleDeleted, map[string]any{"id": id, "host_id": hostID}); err != nil {
		s.logger.Warn().Err(err).Msg("publish rule.deleted failed")
	}
	return nil
}

// ListRules returns a host's rules, most recently created first.
func (s *BookingService) ListRules(ctx context.Context, hostID string) ([]models.AvailabilityRule, error) {
	rules, err := s.repo.ListRules(ctx, hostID)
	if err != nil {
		return nil, &DataUnavailableError{Op: "fetch availability rules", Err: err}
	}
	return rules, nil
}

// ConfirmedBookings returns a host's confirmed bookings for one date.
func (s *BookingService) ConfirmedBookings(ctx context.Context, hostID string, date time.Time) ([]models.Booking, error) {
	bookings, err := s.repo.GetConfirmedBookingsForDate(ctx, hostID, date)
	if err != nil {
		return nil, &DataUnavailableError{Op: "fetch bookings", Err: err}
	}
	return bookings, nil
}

// BookingsReport returns a host's bookings over [from, to] for export.
func (s *BookingService) BookingsReport(ctx context.Context, hostID string, from, to time.Time) ([]models.Booking, error) {
	bookings, err := s.repo.GetBookingsByDateRange(ctx, hostID, from, to)
	if err != nil {
		return nil, &DataUnavailableError{Op: "fetch bookings", Err: err}
	}
	return bookings, nil
}

// ValidateBookingDate enforces the advance-booking window.
func (s *BookingService) ValidateBookingDate(start time.Time) error {
	now := time.Now()
	if start.Before(now.Add(s.minAdvance)) {
		return ErrPastDate
	}
	if s.maxAdvance > 0 && start.After(now.Add(s.maxAdvance)) {
		return ErrDateTooFar
	}
	return nil
}

// CreateBookingRequest carries the guest's booking intent.
type CreateBookingRequest struct {
	HostID          string
	GuestName       string
	GuestEmail      string
	Date            time.Time
	StartClock      string // "HH:MM"
	IntervalMinutes int
}

// CreateBooking books a slot: the slot must currently be offered by the
// engine, inside the advance window, and free of conflicts at insert time.
// The confirmation notification is dispatched asynchronously; its failure
// never rolls back the persisted booking.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	if !slots.ValidInterval(req.IntervalMinutes) {
		return nil, slots.ErrInvalidInterval
	}

	start, err := models.ClockOnDate(req.Date, req.StartClock)
	if err != nil {
		return nil, fmt.Errorf("bad slot time: %w", err)
	}
	end := start.Add(time.Duration(req.IntervalMinutes) * time.Minute)

	if err := s.ValidateBookingDate(start); err != nil {
		return nil, err
	}

	schedule, err := s.GetDaySchedule(ctx, req.HostID, req.Date, req.IntervalMinutes)
	if err != nil {
		return nil, err
	}
	if !containsSlot(schedule.Slots, req.StartClock) {
		return nil, ErrSlotNotAvailable
	}

	booking := &models.Booking{
		Reference:  uuid.New().String(),
		HostID:     req.HostID,
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		StartTime:  start,
		EndTime:    end,
		Status:     models.StatusConfirmed,
	}

	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		metrics.IncBookingCreated("rejected")
		return nil, err
	}
	metrics.IncBookingCreated(booking.Status)

	s.cache.InvalidateDate(ctx, req.HostID, schedule.Date)

	if err := s.bus.PublishJSON(events.TypeBookingCreated, booking); err != nil {
		s.logger.Warn().Err(err).Msg("publish booking.created failed")
	}
	if s.notify != nil {
		if err := s.notify.Enqueue(*booking); err != nil {
			s.logger.Warn().Err(err).Str("reference", booking.Reference).Msg("enqueue confirmation failed")
		}
	}

	s.logger.Info().
		Str("host_id", booking.HostID).
		Str("reference", booking.Reference).
		Time("start", booking.StartTime).
		Msg("booking created")
	return booking, nil
}

// CancelBooking cancels a host's booking by its reference. The slot becomes
// bookable again once the status leaves CONFIRMED. Cancelling an already
// cancelled booking is a no-op.
func (s *BookingService) CancelBooking(ctx context.Context, hostID, reference string) error {
	booking, err := s.repo.GetBookingByReference(ctx, reference)
	if err != nil {
		return err
	}
	if booking.HostID != hostID {
		return database.ErrBookingNotFound
	}
	if booking.Status == models.StatusCancelled {
		return nil
	}

	if err := s.repo.UpdateBookingStatus(ctx, booking.ID, models.StatusCancelled); err != nil {
		return &DataUnavailableError{Op: "cancel booking", Err: err}
	}

	s.cache.InvalidateDate(ctx, hostID, booking.StartTime.Format("2006-01-02"))
	if err := s.bus.PublishJSON(events.TypeBookingCancelled, booking); err != nil {
		s.logger.Warn().Err(err).Msg("publish booking.cancelled failed")
	}

	s.logger.Info().
		Str("host_id", hostID).
		Str("reference", reference).
		Msg("booking cancelled")
	return nil
}

func (s *BookingService) reportSkipped(hostID string, skipped []*models.InvalidRuleError) {
	if len(skipped) == 0 {
		return
	}
	metrics.AddInvalidRulesSkipped(len(skipped))
	for _, ruleErr := range skipped {
		s.logger.Warn().
			Str("host_id", hostID).
			Int64("rule_id", ruleErr.RuleID).
			Str("reason", ruleErr.Reason).
			Msg("skipping malformed availability rule")
	}
}

func containsSlot(offered []string, clock string) bool {
	for _, slot := range offered {
		if slot == clock {
			return true
		}
	}
	return false
}
