package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"meetcal/internal/models"
)

// TelegramNotifier pushes booking notices to the host's Telegram chat.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier creates a Telegram notifier for the given chat.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram client: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

func (t *TelegramNotifier) Name() string { return "telegram" }

// SendConfirmation posts a short booking notice to the host chat.
func (t *TelegramNotifier) SendConfirmation(_ context.Context, booking models.Booking) error {
	text := fmt.Sprintf(
		"📅 New booking\n%s (%s)\n%s, %s to %s\nRef: %s",
		booking.GuestName,
		booking.GuestEmail,
		booking.StartTime.Format("Mon, 2 Jan 2006"),
		booking.StartTime.Format("15:04"),
		booking.EndTime.Format("15:04"),
		booking.Reference,
	)
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
