package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validReservation() ReservationRequest {
	return ReservationRequest{
		Name:      "Ada",
		Email:     "ada@example.com",
		Phone:     "+1 555 0100",
		Date:      "2026-11-20",
		Time:      "19:30",
		Guests:    4,
		EventType: EventPrivateDinner,
	}
}

func TestReservationValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *ReservationRequest)
		wantErr bool
	}{
		{"valid", func(r *ReservationRequest) {}, false},
		{"missing name", func(r *ReservationRequest) { r.Name = "  " }, true},
		{"missing phone", func(r *ReservationRequest) { r.Phone = "" }, true},
		{"zero guests", func(r *ReservationRequest) { r.Guests = 0 }, true},
		{"unknown event", func(r *ReservationRequest) { r.EventType = "wedding" }, true},
		{"bad date", func(r *ReservationRequest) { r.Date = "20/11/2026" }, true},
		{"bad time", func(r *ReservationRequest) { r.Time = "7pm" }, true},
		{"notes optional", func(r *ReservationRequest) { r.DietaryNotes, r.SpecialRequests = "", "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validReservation()
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrValidation), "expected ErrValidation, got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestContactValidate(t *testing.T) {
	assert.NoError(t, ContactMessage{Name: "a", Email: "b", Message: "c"}.Validate())

	err := ContactMessage{Name: "a"}.Validate()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "email, message")
}

func TestMenuParamsWithDefaults(t *testing.T) {
	got := MenuSuggestionParams{Cuisine: " ", Occasion: "anniversary"}.WithDefaults()
	assert.Equal(t, MenuSuggestionParams{
		Cuisine:  "Any",
		Dietary:  "None",
		Occasion: "anniversary",
		Courses:  "3",
	}, got)
}

func TestMenuParamsCourseCount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "3"},
		{"5", "5"},
		{" 4 ", "4"},
		{"05", "5"},
		{"0", "3"},
		{"-2", "3"},
		{"abc", "3"},
		{"2.5", "3"},
	}
	for _, tt := range tests {
		got := MenuSuggestionParams{Courses: tt.in}.WithDefaults()
		assert.Equal(t, tt.want, got.Courses, "courses %q", tt.in)
	}
}

func TestInquiryReady(t *testing.T) {
	assert.False(t, ClientInquiryDraft{}.Ready())
	assert.False(t, ClientInquiryDraft{Inquiry: " \n\t"}.Ready())
	assert.True(t, ClientInquiryDraft{Inquiry: "Do you cater weddings?"}.Ready())
}

func TestParseSection(t *testing.T) {
	for _, s := range Sections() {
		assert.Equal(t, s, ParseSection(string(s)))
	}
	assert.Equal(t, SectionReserve, ParseSection(" Reserve "))
	assert.Equal(t, SectionHome, ParseSection(""))
	assert.Equal(t, SectionHome, ParseSection("admin"))
}

func TestPageState(t *testing.T) {
	s := NewPageState("sid")
	assert.Equal(t, SectionHome, s.Section)
	assert.False(t, s.Ready())

	s.Identity = &SessionIdentity{UserID: "uid-1"}
	assert.True(t, s.Ready())

	s.SetBanner(BannerSuccess, "ok")
	b := s.TakeBanner()
	assert.Equal(t, "ok", b.Text)
	assert.Nil(t, s.Banner)

	var nilState *PageState
	assert.False(t, nilState.Ready())
}

func TestEventTypes(t *testing.T) {
	assert.Len(t, EventTypes(), 4)
	assert.True(t, EventCookingClass.Valid())
	assert.Equal(t, "Cooking Class", EventCookingClass.Label())
	assert.False(t, EventType("").Valid())
}
