package service

import (
	"errors"
	"strings"
	"testing"

	"privatechef/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTelegramSender struct {
	mock.Mock
}

func (m *mockTelegramSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return args.Get(0).(tgbotapi.Message), args.Error(1)
}

func TestChefNotifierReservation(t *testing.T) {
	sender := new(mockTelegramSender)
	notifier := NewChefNotifier(sender, []int64{11, 22}, testLogger())
	bus := events.NewEventBus()
	notifier.Subscribe(bus)

	for _, chatID := range []int64{11, 22} {
		id := chatID
		sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
			msg, ok := c.(tgbotapi.MessageConfig)
			return ok && msg.ChatID == id &&
				strings.Contains(msg.Text, "res-9") &&
				strings.Contains(msg.Text, "Private Dinner") &&
				strings.Contains(msg.Text, "No nuts")
		})).Return(tgbotapi.Message{}, nil).Once()
	}

	err := bus.PublishJSON(events.EventReservationSubmitted, events.ReservationSubmittedPayload{
		ReservationID: "res-9",
		Name:          "Ann",
		Guests:        2,
		EventType:     "private-dinner",
		DietaryNotes:  "No nuts",
	})
	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestChefNotifierContactFailure(t *testing.T) {
	sender := new(mockTelegramSender)
	notifier := NewChefNotifier(sender, []int64{11}, testLogger())
	bus := events.NewEventBus()
	notifier.Subscribe(bus)

	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && strings.Contains(msg.Text, "bo@example.com")
	})).Return(tgbotapi.Message{}, errors.New("chat not found")).Once()

	err := bus.PublishJSON(events.EventContactRelayed, events.ContactRelayedPayload{Name: "Bo", Email: "bo@example.com", Message: "Hi"})
	assert.ErrorContains(t, err, "1 of 1")
	sender.AssertExpectations(t)
}
