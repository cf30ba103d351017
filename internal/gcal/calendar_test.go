package gcal

import (
	"testing"
	"time"

	"meetcal/internal/models"
)

func TestEventForBooking(t *testing.T) {
	start := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	booking := models.Booking{
		Reference:  "ref-1",
		HostID:     "host-1",
		GuestName:  "Ada Lovelace",
		GuestEmail: "ada@example.com",
		StartTime:  start,
		EndTime:    start.Add(30 * time.Minute),
		Status:     models.StatusConfirmed,
	}

	event := eventForBooking(booking)

	if event.Summary != "Meeting with Ada Lovelace" {
		t.Errorf("summary = %q", event.Summary)
	}
	if event.Start.DateTime != "2024-06-03T10:00:00Z" {
		t.Errorf("start = %q", event.Start.DateTime)
	}
	if event.End.DateTime != "2024-06-03T10:30:00Z" {
		t.Errorf("end = %q", event.End.DateTime)
	}
	if len(event.Attendees) != 1 || event.Attendees[0].Email != "ada@example.com" {
		t.Errorf("attendees = %v", event.Attendees)
	}
}

func TestPushBookingSkipsNonConfirmed(t *testing.T) {
	s := &CalendarService{}

	for _, status := range []string{models.StatusPending, models.StatusCancelled} {
		booking := models.Booking{Reference: "ref-1", Status: status}
		// A non-confirmed booking returns before touching the API client.
		if err := s.PushBooking(booking); err != nil {
			t.Errorf("status %s: unexpected error %v", status, err)
		}
	}
}
