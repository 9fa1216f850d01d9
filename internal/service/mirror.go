package service

import (
	"context"
	"time"

	"privatechef/internal/domain"
	"privatechef/internal/events"
	"privatechef/internal/models"

	"github.com/rs/zerolog"
)

// SubscribeMirror queues every submitted reservation for the spreadsheet mirror.
func SubscribeMirror(bus *events.EventBus, queue domain.MirrorQueue, logger *zerolog.Logger) {
	bus.Subscribe(events.EventReservationSubmitted, func(event *events.Event) error {
		var p events.ReservationSubmittedPayload
		if err := event.Decode(&p); err != nil {
			return err
		}

		record := &models.ReservationRecord{
			ID: p.ReservationID,
			ReservationRequest: models.ReservationRequest{
				Name:            p.Name,
				Email:           p.Email,
				Phone:           p.Phone,
				Date:            p.Date,
				Time:            p.Time,
				Guests:          p.Guests,
				EventType:       models.EventType(p.EventType),
				DietaryNotes:    p.DietaryNotes,
				SpecialRequests: p.SpecialRequests,
			},
			UserID:      p.UserID,
			SubmittedAt: p.SubmittedAt,
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := queue.EnqueueReservation(ctx, record); err != nil {
			logger.Error().Err(err).Str("reservation_id", p.ReservationID).Msg("enqueue reservation mirror")
			return err
		}
		return nil
	})
}
