package service

import (
	"html"
	"strings"

	"privatechef/internal/models"

	"github.com/microcosm-cc/bluemonday"
)

// maxSanitizePasses bounds the decode/strip loop for nested encodings.
const maxSanitizePasses = 4

// Sanitizer strips markup from visitor input before it leaves the process.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text returns v as plain text with no markup. Entities are decoded before the
// policy runs, so encoded tags are stripped too, and the pass repeats until
// the value is stable. Templates escape on output.
func (s *Sanitizer) Text(v string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		clean := html.UnescapeString(s.policy.Sanitize(html.UnescapeString(v)))
		if clean == v {
			return strings.TrimSpace(clean)
		}
		v = clean
	}
	// still changing: keep the escaped form, it carries no markup
	return strings.TrimSpace(s.policy.Sanitize(v))
}

func (s *Sanitizer) Reservation(r models.ReservationRequest) models.ReservationRequest {
	r.Name = s.Text(r.Name)
	r.Email = s.Text(r.Email)
	r.Phone = s.Text(r.Phone)
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.DietaryNotes = s.Text(r.DietaryNotes)
	r.SpecialRequests = s.Text(r.SpecialRequests)
	return r
}

func (s *Sanitizer) Contact(m models.ContactMessage) models.ContactMessage {
	m.Name = s.Text(m.Name)
	m.Email = s.Text(m.Email)
	m.Message = s.Text(m.Message)
	return m
}

func (s *Sanitizer) Menu(p models.MenuSuggestionParams) models.MenuSuggestionParams {
	p.Cuisine = s.Text(p.Cuisine)
	p.Dietary = s.Text(p.Dietary)
	p.Occasion = s.Text(p.Occasion)
	p.Courses = s.Text(p.Courses)
	return p
}
