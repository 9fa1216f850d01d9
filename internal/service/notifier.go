package service

import (
	"fmt"
	"strings"

	"privatechef/internal/domain"
	"privatechef/internal/events"
	"privatechef/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// ChefNotifier tells the chef about new reservations and contact messages
// over Telegram. Delivery is best effort.
type ChefNotifier struct {
	bot     domain.TelegramSender
	chatIDs []int64
	logger  *zerolog.Logger
}

func NewChefNotifier(bot domain.TelegramSender, chatIDs []int64, logger *zerolog.Logger) *ChefNotifier {
	return &ChefNotifier{
		bot:     bot,
		chatIDs: chatIDs,
		logger:  logger,
	}
}

// Subscribe registers the notifier on the bus.
func (n *ChefNotifier) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventReservationSubmitted, n.onReservation)
	bus.Subscribe(events.EventContactRelayed, n.onContact)
}

func (n *ChefNotifier) onReservation(event *events.Event) error {
	var p events.ReservationSubmittedPayload
	if err := event.Decode(&p); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🍽 New reservation %s\n\n", p.ReservationID)
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\nPhone: %s\n", p.Name, p.Email, p.Phone)
	fmt.Fprintf(&b, "When: %s %s\nGuests: %d\nEvent: %s\n", p.Date, p.Time, p.Guests, models.EventType(p.EventType).Label())
	if p.DietaryNotes != "" {
		fmt.Fprintf(&b, "Dietary notes: %s\n", p.DietaryNotes)
	}
	if p.SpecialRequests != "" {
		fmt.Fprintf(&b, "Special requests: %s\n", p.SpecialRequests)
	}
	return n.broadcast(b.String())
}

func (n *ChefNotifier) onContact(event *events.Event) error {
	var p events.ContactRelayedPayload
	if err := event.Decode(&p); err != nil {
		return err
	}
	text := fmt.Sprintf("✉️ New message from %s <%s>\n\n%s", p.Name, p.Email, p.Message)
	return n.broadcast(text)
}

func (n *ChefNotifier) broadcast(text string) error {
	var failed int
	for _, chatID := range n.chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.DisableWebPagePreview = true
		if _, err := n.bot.Send(msg); err != nil {
			failed++
			n.logger.Error().Err(err).Int64("chat_id", chatID).Msg("telegram notification failed")
		}
	}
	if failed > 0 {
		return fmt.Errorf("telegram notification failed for %d of %d chats", failed, len(n.chatIDs))
	}
	return nil
}
