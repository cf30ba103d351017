// Package api exposes the booking calendar over HTTP with JSON bodies.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"meetcal/internal/service"
)

// HTTPServer serves the availability and booking endpoints.
type HTTPServer struct {
	svc    *service.BookingService
	log    *zerolog.Logger
	apiKey string
	server *http.Server
}

// NewHTTPServer wires the handlers. An empty apiKey disables authentication.
func NewHTTPServer(svc *service.BookingService, addr, apiKey string, logger *zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		svc:    svc,
		log:    logger,
		apiKey: apiKey,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/availability", s.requireKey(s.handleAvailability))
	mux.HandleFunc("/api/availability/dates", s.requireKey(s.handleDateRange))
	mux.HandleFunc("/api/slots", s.requireKey(s.handleSlots))
	mux.HandleFunc("/api/bookings", s.requireKey(s.handleBookings))
	mux.HandleFunc("/api/bookings/export", s.requireKey(s.handleBookingsExport))
	mux.HandleFunc("/api/bookings/", s.requireKey(s.handleCancelBooking))

	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler returns the routed handler, used by tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until the listener fails or Shutdown is called.
func (s *HTTPServer) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) requireKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("X-Api-Key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid or missing API key")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
