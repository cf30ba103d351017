package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"meetcal/internal/metrics"
	"meetcal/internal/service"
	"meetcal/internal/slots"
)

// DateRangeRequest is the request body for POST /api/availability/dates.
type DateRangeRequest struct {
	HostID    string `json:"hostId"`
	StartDate string `json:"startDate"` // Format: YYYY-MM-DD
	EndDate   string `json:"endDate"`   // Format: YYYY-MM-DD
}

// DateRangeResponse is the response for POST /api/availability/dates.
type DateRangeResponse struct {
	Dates  []service.DateAvailability `json:"dates"`
	Period struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"period"`
}

// handleSlots returns the bookable slots of one date.
// GET /api/slots?host_id=...&date=YYYY-MM-DD&interval=30
func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

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

	interval := 30
	if raw := r.URL.Query().Get("interval"); raw != "" {
		interval, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid interval; expected a number of minutes")
			return
		}
	}

	schedule, err := s.svc.GetDaySchedule(r.Context(), hostID, date, interval)
	if err != nil {
		s.writeScheduleError(w, hostID, err)
		return
	}

	writeJSON(w, http.StatusOK, schedule)
}

// handleDateRange returns per-date availability over an inclusive range.
// POST /api/availability/dates
func (s *HTTPServer) handleDateRange(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability_dates")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req DateRangeRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.HostID == "" {
		writeError(w, http.StatusBadRequest, "hostId is required")
		return
	}
	if req.StartDate == "" || req.EndDate == "" {
		writeError(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate format; expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate format; expected YYYY-MM-DD")
		return
	}
	if start.After(end) {
		writeError(w, http.StatusBadRequest, "startDate must be before or equal to endDate")
		return
	}

	dates, err := s.svc.GetDateRangeAvailability(r.Context(), req.HostID, start, end)
	if err != nil {
		if errors.Is(err, service.ErrRangeTooLarge) {
			writeError(w, http.StatusBadRequest, "date range exceeds the allowed maximum")
			return
		}
		s.writeScheduleError(w, req.HostID, err)
		return
	}

	resp := DateRangeResponse{Dates: dates}
	resp.Period.Start = req.StartDate
	resp.Period.End = req.EndDate
	writeJSON(w, http.StatusOK, resp)
}

// writeScheduleError maps engine and data errors onto HTTP statuses. A data
// fetch failure must not read as an empty slot list.
func (s *HTTPServer) writeScheduleError(w http.ResponseWriter, hostID string, err error) {
	if errors.Is(err, slots.ErrInvalidInterval) {
		writeError(w, http.StatusBadRequest, slots.ErrInvalidInterval.Error())
		return
	}

	var unavailable *service.DataUnavailableError
	if errors.As(err, &unavailable) {
		s.log.Error().Err(err).Str("host_id", hostID).Msg("availability data unavailable")
		writeError(w, http.StatusServiceUnavailable, "availability data is temporarily unavailable")
		return
	}

	s.log.Error().Err(err).Str("host_id", hostID).Msg("slot query failed")
	writeError(w, http.StatusInternalServerError, "slot query failed")
}
