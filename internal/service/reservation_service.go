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

type ReservationService struct {
	store     domain.ReservationStore
	eventBus  domain.EventPublisher
	sanitizer *Sanitizer
	logger    *zerolog.Logger
}

// NewReservationService accepts a nil store; Submit then reports NotReady.
func NewReservationService(store domain.ReservationStore, eventBus domain.EventPublisher, logger *zerolog.Logger) *ReservationService {
	return &ReservationService{
		store:     store,
		eventBus:  eventBus,
		sanitizer: NewSanitizer(),
		logger:    logger,
	}
}

// Submit appends one reservation for identity. It makes no network call when
// the identity or the store is missing, or when the request is incomplete.
func (s *ReservationService) Submit(ctx context.Context, identity *models.SessionIdentity, req models.ReservationRequest) (*models.ReservationRecord, error) {
	if identity == nil || identity.UserID == "" || s.store == nil {
		metrics.ObserveCall("store", outcome.NewNotReady(""))
		return nil, outcome.NewNotReady("Application not ready. Please wait a moment and try again.")
	}

	req = s.sanitizer.Reservation(req)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	record := &models.ReservationRecord{
		ReservationRequest: req,
		UserID:             identity.UserID,
	}

	id, err := s.store.AppendReservation(ctx, record)
	metrics.ObserveCall("store", err)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", identity.UserID).Msg("reservation submit failed")
		return nil, err
	}
	record.ID = id
	record.SubmittedAt = time.Now()

	s.logger.Info().Str("reservation_id", id).Str("event_type", string(req.EventType)).Int("guests", req.Guests).Msg("reservation submitted")
	s.publish(record)
	return record, nil
}

func (s *ReservationService) publish(record *models.ReservationRecord) {
	if s.eventBus == nil {
		return
	}
	r := record.ReservationRequest
	payload := events.ReservationSubmittedPayload{
		ReservationID:   record.ID,
		UserID:          record.UserID,
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		Date:            r.Date,
		Time:            r.Time,
		Guests:          r.Guests,
		EventType:       string(r.EventType),
		DietaryNotes:    r.DietaryNotes,
		SpecialRequests: r.SpecialRequests,
		SubmittedAt:     record.SubmittedAt,
	}
	if err := s.eventBus.PublishJSON(events.EventReservationSubmitted, payload); err != nil {
		s.logger.Warn().Err(err).Str("reservation_id", record.ID).Msg("reservation event handlers failed")
	}
}
