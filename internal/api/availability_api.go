package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"meetcal/internal/database"
	"meetcal/internal/metrics"
	"meetcal/internal/models"
)

// RuleDTO is the wire form of one availability rule.
type RuleDTO struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	DayOfWeek *int   `json:"dayOfWeek"`
	StartDate string `json:"startDate,omitempty"` // Format: YYYY-MM-DD
	EndDate   string `json:"endDate,omitempty"`   // Format: YYYY-MM-DD
	StartTime string `json:"startTime"`           // Format: HH:MM
	EndTime   string `json:"endTime"`             // Format: HH:MM
}

// WeeklyDay is one weekday entry of the availability summary.
type WeeklyDay struct {
	Available bool                `json:"available"`
	Slots     []models.TimeWindow `json:"slots"`
}

// DateRangeDTO is one DATE_RANGE entry of the availability summary.
type DateRangeDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailabilitySummary groups a host's rules for calendar rendering.
type AvailabilitySummary struct {
	Weekly        map[int]WeeklyDay `json:"weekly"`
	SpecificDates []string          `json:"specificDates"`
	DateRanges    []DateRangeDTO    `json:"dateRanges"`
	All           []RuleDTO         `json:"all"`
}

// CreateRuleRequest is the request body for POST /api/availability.
type CreateRuleRequest struct {
	HostID    string `json:"hostId"`
	Type      string `json:"type"`
	DayOfWeek *int   `json:"dayOfWeek,omitempty"`
	StartDate string `json:"startDate,omitempty"` // Format: YYYY-MM-DD
	EndDate   string `json:"endDate,omitempty"`   // Format: YYYY-MM-DD
	StartTime string `json:"startTime"`           // Format: HH:MM
	EndTime   string `json:"endTime"`             // Format: HH:MM
}

// DeleteRuleRequest is the request body for DELETE /api/availability.
type DeleteRuleRequest struct {
	ID     int64  `json:"id"`
	HostID string `json:"hostId"`
}

// handleAvailability serves the rule collection.
// GET /api/availability?host_id=...  summary of all rules
// POST /api/availability             create a rule
// DELETE /api/availability           delete a rule
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")

	switch r.Method {
	case http.MethodGet:
		s.getAvailabilitySummary(w, r)
	case http.MethodPost:
		s.createRule(w, r)
	case http.MethodDelete:
		s.deleteRule(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *HTTPServer) getAvailabilitySummary(w http.ResponseWriter, r *http.Request) {
	hostID := r.URL.Query().Get("host_id")
	if hostID == "" {
		writeError(w, http.StatusBadRequest, "host_id is required")
		return
	}

	rules, err := s.svc.ListRules(r.Context(), hostID)
	if err != nil {
		s.log.Error().Err(err).Str("host_id", hostID).Msg("failed to fetch availability")
		writeError(w, http.StatusServiceUnavailable, "failed to fetch availability")
		return
	}

	writeJSON(w, http.StatusOK, buildSummary(rules))
}

func buildSummary(rules []models.AvailabilityRule) AvailabilitySummary {
	summary := AvailabilitySummary{
		Weekly:        make(map[int]WeeklyDay, 7),
		SpecificDates: make([]string, 0),
		DateRanges:    make([]DateRangeDTO, 0),
		All:           make([]RuleDTO, 0, len(rules)),
	}
	for day := 0; day < 7; day++ {
		summary.Weekly[day] = WeeklyDay{Available: false, Slots: []models.TimeWindow{}}
	}

	for _, rule := range rules {
		switch {
		case rule.Type == models.RuleRecurring && rule.DayOfWeek != nil:
			day := summary.Weekly[*rule.DayOfWeek]
			day.Available = true
			day.Slots = append(day.Slots, models.TimeWindow{Start: rule.StartTime, End: rule.EndTime})
			summary.Weekly[*rule.DayOfWeek] = day
		case rule.Type == models.RuleDateRange && rule.StartDate != nil && rule.EndDate != nil:
			summary.DateRanges = append(summary.DateRanges, DateRangeDTO{
				Start: rule.StartDate.Format("2006-01-02"),
				End:   rule.EndDate.Format("2006-01-02"),
			})
		case rule.Type == models.RuleSpecificDate && rule.StartDate != nil:
			summary.SpecificDates = append(summary.SpecificDates, rule.StartDate.Format("2006-01-02"))
		}

		summary.All = append(summary.All, ruleToDTO(rule))
	}
	return summary
}

func ruleToDTO(rule models.AvailabilityRule) RuleDTO {
	dto := RuleDTO{
		ID:        rule.ID,
		Type:      rule.Type,
		DayOfWeek: rule.DayOfWeek,
		StartTime: rule.StartTime,
		EndTime:   rule.EndTime,
	}
	if rule.StartDate != nil {
		dto.StartDate = rule.StartDate.Format("2006-01-02")
	}
	if rule.EndDate != nil {
		dto.EndDate = rule.EndDate.Format("2006-01-02")
	}
	return dto
}

func (s *HTTPServer) createRule(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleRequest
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

	rule := models.AvailabilityRule{
		HostID:    req.HostID,
		Type:      req.Type,
		DayOfWeek: req.DayOfWeek,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	var err error
	if rule.StartDate, err = parseOptionalDate(req.StartDate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid startDate format; expected YYYY-MM-DD")
		return
	}
	if rule.EndDate, err = parseOptionalDate(req.EndDate); err != nil {
		writeError(w, http.StatusBadRequest, "invalid endDate format; expected YYYY-MM-DD")
		return
	}

	if err := s.svc.CreateRule(r.Context(), &rule); err != nil {
		var ruleErr *models.InvalidRuleError
		if errors.As(err, &ruleErr) {
			writeError(w, http.StatusBadRequest, ruleErr.Reason)
			return
		}
		s.log.Error().Err(err).Str("host_id", req.HostID).Msg("failed to save availability")
		writeError(w, http.StatusServiceUnavailable, "failed to save availability")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": rule.ID})
}

func (s *HTTPServer) deleteRule(w http.ResponseWriter, r *http.Request) {
	var req DeleteRuleRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.ID == 0 || req.HostID == "" {
		writeError(w, http.StatusBadRequest, "id and hostId are required")
		return
	}

	if err := s.svc.DeleteRule(r.Context(), req.ID, req.HostID); err != nil {
		if errors.Is(err, database.ErrRuleNotFound) {
			writeError(w, http.StatusNotFound, "availability rule not found")
			return
		}
		s.log.Error().Err(err).Int64("rule_id", req.ID).Msg("failed to delete availability")
		writeError(w, http.StatusServiceUnavailable, "failed to delete availability")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
