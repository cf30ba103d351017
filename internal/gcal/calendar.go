// Package gcal mirrors confirmed bookings into a Google Calendar.
package gcal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"meetcal/internal/events"
	"meetcal/internal/models"
)

// CalendarService pushes booking events to one Google Calendar.
type CalendarService struct {
	svc        *calendar.Service
	calendarID string
	log        *zerolog.Logger
}

// New creates a calendar service authenticated by a service account file.
func New(ctx context.Context, credentialsFile, calendarID string, logger *zerolog.Logger) (*CalendarService, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}
	jwtConfig, err := google.JWTConfigFromJSON(data, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	svc, err := calendar.NewService(ctx, option.WithTokenSource(jwtConfig.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar client: %w", err)
	}
	return &CalendarService{
		svc:        svc,
		calendarID: calendarID,
		log:        logger,
	}, nil
}

// Subscribe mirrors every created booking onto the calendar. Push failures
// are logged, never propagated to the booking path.
func (s *CalendarService) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.TypeBookingCreated, func(event events.Event) error {
		var booking models.Booking
		if err := json.Unmarshal(event.Payload, &booking); err != nil {
			s.log.Error().Err(err).Msg("bad booking payload in calendar sync")
			return err
		}
		if err := s.PushBooking(booking); err != nil {
			s.log.Error().Err(err).
				Str("reference", booking.Reference).
				Msg("failed to push booking to calendar")
			return err
		}
		return nil
	})
}

// PushBooking inserts one confirmed booking as a calendar event.
func (s *CalendarService) PushBooking(booking models.Booking) error {
	if !booking.IsConfirmed() {
		return nil
	}

	_, err := s.svc.Events.Insert(s.calendarID, eventForBooking(booking)).Do()
	if err != nil {
		return fmt.Errorf("insert event for %s: %w", booking.Reference, err)
	}

	s.log.Info().
		Str("reference", booking.Reference).
		Time("start", booking.StartTime).
		Msg("booking pushed to calendar")
	return nil
}

func eventForBooking(booking models.Booking) *calendar.Event {
	return &calendar.Event{
		Summary:     fmt.Sprintf("Meeting with %s", booking.GuestName),
		Description: fmt.Sprintf("Booking reference: %s\nGuest: %s (%s)", booking.Reference, booking.GuestName, booking.GuestEmail),
		Start: &calendar.EventDateTime{
			DateTime: booking.StartTime.Format(time.RFC3339),
		},
		End: &calendar.EventDateTime{
			DateTime: booking.EndTime.Format(time.RFC3339),
		},
		Attendees: []*calendar.EventAttendee{
			{Email: booking.GuestEmail, DisplayName: booking.GuestName},
		},
	}
}
