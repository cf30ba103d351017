package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"meetcal/internal/database"
	"meetcal/internal/export"
	"meetcal/internal/metrics"
	"meetcal/internal/service"
	"meetcal/internal/slots"
)

// CreateBookingRequest is the request body for POST /api/bookings.
type CreateBookingRequest struct {
	HostID   string `json:"hostId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Date     string `json:"date"`     // Format: YYYY-MM-DD
	Time     string `json:"time"`     // Format: HH:MM
	Duration int    `json:"duration"` // minutes: 15, 30 or 60
}

// CreateBookingResponse is the response for POST /api/bookings.
type CreateBookingResponse struct {
	Success   bool   `json:"success"`
	Reference string `json:"reference,omitempty"`
	Error     string `json:"error,omitempty"`
}

// handleBookings serves the booking collection.
// POST /api/bookings                          create a booking
// GET /api/bookings?host_id=...&date=...      confirmed bookings of one date
func (s *HTTPServer) handleBookings(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings")

	switch r.Method {
	case http.MethodPost:
		s.createBooking(w, r)
	case http.MethodGet:
		s.listBookings(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) createBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, CreateBookingResponse{Error: "invalid JSON body"})
		return
	}

	if req.HostID == "" || req.Name == "" || req.Email == "" {
		writeJSON(w, http.StatusBadRequest, CreateBookingResponse{Error: "hostId, name and email are required"})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, CreateBookingResponse{Error: "invalid date format; expected YYYY-MM-DD"})
		return
	}

	booking, err := s.svc.CreateBooking(r.Context(), service.CreateBookingRequest{
		HostID:          req.HostID,
		GuestName:       req.Name,
		GuestEmail:      req.Email,
		Date:            date,
		StartClock:      req.Time,
		IntervalMinutes: req.Duration,
	})
	if err != nil {
		s.writeBookingError(w, req.HostID, err)
		return
	}

	writeJSON(w, http.StatusOK, CreateBookingResponse{Success: true, Reference: booking.Reference})
}

func (s *HTTPServer) writeBookingError(w http.ResponseWriter, hostID string, err error) {
	switch {
	case errors.Is(err, slots.ErrInvalidInterval):
		writeJSON(w, http.StatusBadRequest, CreateBookingResponse{Error: slots.ErrInvalidInterval.Error()})
	case errors.Is(err, service.ErrPastDate):
		writeJSON(w, http.StatusBadRequest, CreateBookingResponse{Error: "booking must be in the future"})
	case errors.Is(err, service.ErrDateTooFar):
		writeJSON(w, http.StatusBadRequest, CreateBookingResponse{Error: "booking date is too far in the future"})
	case errors.Is(err, service.ErrSlotNotAvailable), errors.Is(err, database.ErrSlotTaken):
		writeJSON(w, http.StatusConflict, CreateBookingResponse{Error: "slot is not available"})
	default:
		var unavailable *service.DataUnavailableError
		if errors.As(err, &unavailable) {
			s.log.Error().Err(err).Str("host_id", hostID).Msg("availability data unavailable")
			writeJSON(w, http.StatusServiceUnavailable, CreateBookingResponse{Error: "availability data is temporarily unavailable"})
			return
		}
		s.log.Error().Err(err).Str("host_id", hostID).Msg("failed to create booking")
		writeJSON(w, http.StatusInternalServerError, CreateBookingResponse{Error: "failed to create booking"})
	}
}

func (s *HTTPServer) listBookings(w http.ResponseWriter, r *http.Request) {
	hostID := r.URL.Query().Get("host_id")
	if hostID == "" {
		writeError(w, http.StatusBadRequest, "host_id is required")
		return
	}

	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	bookings, err := s.svc.ConfirmedBookings(r.Context(), hostID, date)
	if err != nil {
		s.log.Error().Err(err).Str("host_id", hostID).Msg("failed to fetch bookings")
		writeError(w, http.StatusServiceUnavailable, "failed to fetch bookings")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// handleCancelBooking cancels a booking by reference; the slot is offered
// again afterwards.
// DELETE /api/bookings/{reference}?host_id=...
func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("cancel_booking")
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	const prefix = "/api/bookings/"
	reference := strings.TrimPrefix(r.URL.Path, prefix)
	if reference == "" || strings.Contains(reference, "/") {
		writeError(w, http.StatusBadRequest, "booking reference is required")
		return
	}

	hostID := r.URL.Query().Get("host_id")
	if hostID == "" {
		writeError(w, http.StatusBadRequest, "host_id is required")
		return
	}

	if err := s.svc.CancelBooking(r.Context(), hostID, reference); err != nil {
		if errors.Is(err, database.ErrBookingNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		s.log.Error().Err(err).Str("reference", reference).Msg("failed to cancel booking")
		writeError(w, http.StatusServiceUnavailable, "failed to cancel booking")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleBookingsExport streams an Excel report of a host's bookings.
// GET /api/bookings/export?host_id=...&from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *HTTPServer) handleBookingsExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bookings_export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	hostID := r.URL.Query().Get("host_id")
	if hostID == "" {
		writeError(w, http.StatusBadRequest, "host_id is required")
		return
	}

	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from format; expected YYYY-MM-DD")
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to format; expected YYYY-MM-DD")
		return
	}
	if from.After(to) {
		writeError(w, http.StatusBadRequest, "from must be before or equal to to")
		return
	}

	bookings, err := s.svc.BookingsReport(r.Context(), hostID, from, to)
	if err != nil {
		s.log.Error().Err(err).Str("host_id", hostID).Msg("failed to fetch bookings for export")
		writeError(w, http.StatusServiceUnavailable, "failed to fetch bookings")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+export.ReportFilename(hostID, from, to))
	if err := export.WriteBookingsReport(w, hostID, from, to, bookings); err != nil {
		s.log.Error().Err(err).Str("host_id", hostID).Msg("failed to render bookings report")
	}
}
