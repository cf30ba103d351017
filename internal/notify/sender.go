package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"meetcal/internal/metrics"
	"meetcal/internal/models"
)

// RetryConfig holds configuration for retry logic.
type RetryConfig struct {
	MaxRetries  int
	RetryDelays []time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelays: []time.Duration{
			1 * time.Second,
			5 * time.Second,
			30 * time.Second,
		},
	}
}

// SenderConfig holds configuration for the sender.
type SenderConfig struct {
	// MessagesPerSecond caps outbound deliveries across all channels.
	MessagesPerSecond float64
	Burst             int
	QueueSize         int
	Retry             RetryConfig
}

// DefaultSenderConfig returns the default configuration.
func DefaultSenderConfig() SenderConfig {
	return SenderConfig{
		MessagesPerSecond: 5,
		Burst:             10,
		QueueSize:         64,
		Retry:             DefaultRetryConfig(),
	}
}

// Sender fans booking confirmations out to the configured channels with
// rate limiting and retry logic. Enqueue never blocks the booking path.
type Sender struct {
	notifiers []Notifier
	limiter   *rate.Limiter
	retry     RetryConfig
	queue     chan models.Booking
	logger    zerolog.Logger
}

// NewSender creates a sender delivering to the given notifiers.
func NewSender(notifiers []Notifier, config SenderConfig, logger zerolog.Logger) *Sender {
	return &Sender{
		notifiers: notifiers,
		limiter:   rate.NewLimiter(rate.Limit(config.MessagesPerSecond), config.Burst),
		retry:     config.Retry,
		queue:     make(chan models.Booking, config.QueueSize),
		logger:    logger.With().Str("component", "notify").Logger(),
	}
}

// Enqueue schedules a confirmation for delivery. If the queue is full the
// booking is logged and dropped rather than stalling the caller.
func (s *Sender) Enqueue(booking models.Booking) error {
	select {
	case s.queue <- booking:
		return nil
	default:
		s.logger.Error().
			Str("reference", booking.Reference).
			Msg("Notification queue full, dropping confirmation")
		return ErrQueueFull
	}
}

// Run drains the queue until the context is cancelled.
func (s *Sender) Run(ctx context.Context) {
	s.logger.Info().Int("channels", len(s.notifiers)).Msg("Notification sender started")
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Notification sender stopped")
			return
		case booking := <-s.queue:
			s.dispatch(ctx, booking)
		}
	}
}

func (s *Sender) dispatch(ctx context.Context, booking models.Booking) {
	for _, n := range s.notifiers {
		if err := s.sendWithRetry(ctx, n, booking); err != nil {
			s.logger.Error().
				Err(err).
				Str("channel", n.Name()).
				Str("reference", booking.Reference).
				Msg("Failed to deliver confirmation")
			metrics.IncNotification(n.Name(), "failed")
			continue
		}
		metrics.IncNotification(n.Name(), "sent")
	}
}

func (s *Sender) sendWithRetry(ctx context.Context, n Notifier, booking models.Booking) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= s.retry.MaxRetries; attempt++ {
		err := n.SendConfirmation(ctx, booking)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt < s.retry.MaxRetries {
			delay := s.retry.RetryDelays[min(attempt, len(s.retry.RetryDelays)-1)]
			s.logger.Info().
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Str("channel", n.Name()).
				Err(err).
				Msg("Retrying confirmation delivery")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}
