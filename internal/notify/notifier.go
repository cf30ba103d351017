// Package notify delivers booking confirmations. Delivery runs after the
// booking is durably persisted; a failed notification never rolls the
// booking back.
package notify

import (
	"context"
	"errors"

	"meetcal/internal/models"
)

// ErrQueueFull is returned when the delivery queue cannot accept more work.
var ErrQueueFull = errors.New("notification queue is full")

// Notifier delivers a booking confirmation over one channel.
type Notifier interface {
	Name() string
	SendConfirmation(ctx context.Context, booking models.Booking) error
}
