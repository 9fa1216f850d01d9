package service

import (
	"context"
	"errors"
	"strings"

	"privatechef/internal/models"
	"privatechef/internal/outcome"
)

const (
	msgReservationOK = "Reservation submitted successfully! We will contact you shortly to confirm the details."
	msgContactOK     = "Thank you for your message! We will get back to you soon."
	msgBusy          = "A request is already in progress. Please wait."
)

// PageService applies the result of each form action to the page state:
// the banner, and whether the form is cleared or kept for another try.
type PageService struct {
	Sessions     *SessionService
	Reservations *ReservationService
	Contacts     *ContactService
	Assistant    *AssistantService
}

func NewPageService(sessions *SessionService, reservations *ReservationService, contacts *ContactService, assistant *AssistantService) *PageService {
	return &PageService{
		Sessions:     sessions,
		Reservations: reservations,
		Contacts:     contacts,
		Assistant:    assistant,
	}
}

// SubmitReservation clears the reservation form on success and keeps what the
// visitor typed on any failure.
func (p *PageService) SubmitReservation(ctx context.Context, sessionID string, req models.ReservationRequest) (*models.PageState, error) {
	state, err := p.Sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	_, submitErr := p.Reservations.Submit(ctx, state.Identity, req)
	return p.Sessions.Update(ctx, sessionID, func(s *models.PageState) {
		s.Section = models.SectionReserve
		if submitErr != nil {
			s.Reservation = req
			s.SetBanner(models.BannerError, BannerText("Failed to submit reservation", submitErr))
			return
		}
		s.Reservation = models.ReservationRequest{}
		s.SetBanner(models.BannerSuccess, msgReservationOK)
	})
}

// SendContact clears the contact form on success only.
func (p *PageService) SendContact(ctx context.Context, sessionID string, msg models.ContactMessage) (*models.PageState, error) {
	state, err := p.Sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	sendErr := p.Contacts.Send(ctx, state.Identity, msg)
	return p.Sessions.Update(ctx, sessionID, func(s *models.PageState) {
		s.Section = models.SectionContact
		if sendErr != nil {
			s.Contact = msg
			s.SetBanner(models.BannerError, BannerText("Failed to send message", sendErr))
			return
		}
		s.Contact = models.ContactMessage{}
		s.SetBanner(models.BannerSuccess, msgContactOK)
	})
}

// SuggestMenu stores the generated menu next to the inputs that produced it.
func (p *PageService) SuggestMenu(ctx context.Context, sessionID string, params models.MenuSuggestionParams) (*models.PageState, error) {
	text, genErr := p.Assistant.SuggestMenu(ctx, sessionID, params)
	return p.Sessions.Update(ctx, sessionID, func(s *models.PageState) {
		s.Section = models.SectionServices
		s.Menu = params
		if genErr != nil {
			s.SetBanner(models.BannerError, BannerText("Failed to generate menu", genErr))
			return
		}
		s.MenuSuggestion = text
	})
}

// DraftReply stores the drafted reply for the inquiry.
func (p *PageService) DraftReply(ctx context.Context, sessionID, inquiry string) (*models.PageState, error) {
	text, genErr := p.Assistant.DraftReply(ctx, sessionID, inquiry)
	return p.Sessions.Update(ctx, sessionID, func(s *models.PageState) {
		s.Section = models.SectionContact
		s.Inquiry.Inquiry = inquiry
		if genErr != nil {
			s.SetBanner(models.BannerError, BannerText("Failed to draft reply", genErr))
			return
		}
		s.Inquiry.Response = text
	})
}

// BannerText turns err into the message shown to the visitor.
func BannerText(action string, err error) string {
	switch {
	case errors.Is(err, models.ErrBusy):
		return msgBusy
	case errors.Is(err, models.ErrValidation):
		msg := strings.TrimPrefix(err.Error(), models.ErrValidation.Error()+": ")
		return "Please check the form: " + msg + "."
	}

	switch outcome.KindOf(err) {
	case outcome.NotReady:
		return outcome.Message(err)
	case outcome.Transport:
		return action + ". Please check your connection and try again."
	case outcome.Protocol:
		return action + ": " + outcome.Message(err) + "."
	case outcome.Rejected:
		msg := outcome.Message(err)
		if strings.HasPrefix(msg, action) {
			return msg
		}
		return action + ": " + msg
	default:
		return action + ". Please try again later."
	}
}
