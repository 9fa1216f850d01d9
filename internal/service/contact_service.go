package service

import (
	"context"
	"time"

	"privatechef/internal/domain"
	"privatechef/internal/events"
	"privatechef/internal/metrics"
	"privatechef/internal/models"
	"privatechef/internal/outcome"

	"github.com/rs/zerolog"
)

type ContactService struct {
	relay     domain.ContactRelay
	eventBus  domain.EventPublisher
	sanitizer *Sanitizer
	logger    *zerolog.Logger
}

func NewContactService(relay domain.ContactRelay, eventBus domain.EventPublisher, logger *zerolog.Logger) *ContactService {
	return &ContactService{
		relay:     relay,
		eventBus:  eventBus,
		sanitizer: NewSanitizer(),
		logger:    logger,
	}
}

// Send forwards msg to the relay. Only the identity is required; the
// document store plays no part here.
func (s *ContactService) Send(ctx context.Context, identity *models.SessionIdentity, msg models.ContactMessage) error {
	if identity == nil || identity.UserID == "" || s.relay == nil {
		metrics.ObserveCall("relay", outcome.NewNotReady(""))
		return outcome.NewNotReady("Application not ready. Please wait a moment and try again.")
	}

	msg = s.sanitizer.Contact(msg)
	if err := msg.Validate(); err != nil {
		return err
	}

	err := s.relay.Send(ctx, msg)
	metrics.ObserveCall("relay", err)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", identity.UserID).Msg("contact relay failed")
		return err
	}

	s.logger.Info().Str("user_id", identity.UserID).Msg("contact message relayed")
	if s.eventBus != nil {
		payload := events.ContactRelayedPayload{
			UserID:  identity.UserID,
			Name:    msg.Name,
			Email:   msg.Email,
			Message: msg.Message,
			SentAt:  time.Now(),
		}
		if err := s.eventBus.PublishJSON(events.EventContactRelayed, payload); err != nil {
			s.logger.Warn().Err(err).Msg("contact event handlers failed")
		}
	}
	return nil
}
