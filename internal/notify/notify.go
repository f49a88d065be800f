// Package notify delivers offer notifications to the configured recipients
// over Telegram.
package notify

import (
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cian_bot/internal/model"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier formats offers and sends them to every configured recipient.
type Notifier struct {
	api telegramAPI
	log *slog.Logger
}

// New creates a Notifier with the given Telegram token.
func New(token string, log *slog.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Notifier{api: api, log: log}, nil
}

// NewWithAPI creates a Notifier around an existing API client (useful for
// testing).
func NewWithAPI(api telegramAPI, log *slog.Logger) *Notifier {
	return &Notifier{api: api, log: log}
}

// Notify sends the formatted offer to every recipient. Deliveries are
// independent: one recipient failing does not stop the rest, and no
// confirmation is surfaced to the caller.
func (n *Notifier) Notify(offer model.Offer, recipients map[int64]string) {
	text := FormatOffer(offer)
	for chatID, label := range recipients {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.DisableWebPagePreview = true
		if _, err := n.api.Send(msg); err != nil {
			n.log.Error("send notification", "chat_id", chatID, "recipient", label, "offer_id", offer.ID, "error", err)
			continue
		}
		n.log.Debug("notification sent", "chat_id", chatID, "recipient", label, "offer_id", offer.ID)
	}
}
