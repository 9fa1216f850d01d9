package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"privatechef/internal/models"
	"privatechef/internal/view"

	"github.com/go-chi/chi/v5"
)

// handlePage renders the page with the requested section visible. The banner
// left by the last form action is shown once and then dropped.
func (s *HTTPServer) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := SessionIDFromContext(ctx)
	section := models.ParseSection(chi.URLParam(r, "section"))

	state, banner, err := s.pages.Sessions.Show(ctx, sid, section)
	if err != nil {
		s.log.Error().Err(err).Str("session_id", sid).Msg("load page state")
		http.Error(w, "Something went wrong. Please reload the page.", http.StatusInternalServerError)
		return
	}

	menuBusy := s.pages.Assistant.Busy(ctx, sid, models.ToolMenu)
	replyBusy := s.pages.Assistant.Busy(ctx, sid, models.ToolReply)
	page := view.NewPage(s.cfg.App.Name, s.catalog, state, banner, menuBusy, replyBusy)

	var buf bytes.Buffer
	if err := view.Render(&buf, page); err != nil {
		s.log.Error().Err(err).Str("section", string(section)).Msg("render page")
		http.Error(w, "Something went wrong. Please reload the page.", http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusOK, &buf)
}

func (s *HTTPServer) handleReserve(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	req := reservationFromForm(r)
	if _, err := s.pages.SubmitReservation(r.Context(), SessionIDFromContext(r.Context()), req); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectTo(w, r, models.SectionReserve)
}

func (s *HTTPServer) handleContact(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	msg := models.ContactMessage{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Message: r.PostFormValue("message"),
	}
	if _, err := s.pages.SendContact(r.Context(), SessionIDFromContext(r.Context()), msg); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectTo(w, r, models.SectionContact)
}

func (s *HTTPServer) handleMenu(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	params := models.MenuSuggestionParams{
		Cuisine:  r.PostFormValue("cuisine"),
		Dietary:  r.PostFormValue("dietary"),
		Occasion: r.PostFormValue("occasion"),
		Courses:  r.PostFormValue("courses"),
	}
	if _, err := s.pages.SuggestMenu(r.Context(), SessionIDFromContext(r.Context()), params); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectTo(w, r, models.SectionServices)
}

func (s *HTTPServer) handleReply(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	inquiry := r.PostFormValue("inquiry")
	if _, err := s.pages.DraftReply(r.Context(), SessionIDFromContext(r.Context()), inquiry); err != nil {
		s.fail(w, r, err)
		return
	}
	redirectTo(w, r, models.SectionContact)
}

// fail handles errors of the page state itself. Failures of the external
// calls never get here; they end up in the banner.
func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.log.Error().Err(err).
		Str("request_id", RequestIDFromContext(r.Context())).
		Str("path", r.URL.Path).
		Msg("update page state")
	http.Error(w, "Something went wrong. Please reload the page.", http.StatusInternalServerError)
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	return true
}

func reservationFromForm(r *http.Request) models.ReservationRequest {
	guests, err := strconv.Atoi(strings.TrimSpace(r.PostFormValue("guests")))
	if err != nil {
		guests = 0
	}
	return models.ReservationRequest{
		Name:            r.PostFormValue("name"),
		Email:           r.PostFormValue("email"),
		Phone:           r.PostFormValue("phone"),
		Date:            r.PostFormValue("date"),
		Time:            r.PostFormValue("time"),
		Guests:          guests,
		EventType:       models.EventType(r.PostFormValue("eventType")),
		DietaryNotes:    r.PostFormValue("dietaryNotes"),
		SpecialRequests: r.PostFormValue("specialRequests"),
	}
}

// redirectTo finishes a form POST with a 303 so a reload does not resubmit.
func redirectTo(w http.ResponseWriter, r *http.Request, section models.Section) {
	http.Redirect(w, r, "/"+string(section), http.StatusSeeOther)
}
