package models

import "time"

// SessionIdentity is the identity issued by the identity provider.
type SessionIdentity struct {
	UserID    string    `json:"user_id"`
	Anonymous bool      `json:"anonymous"`
	IssuedAt  time.Time `json:"issued_at"`
}

type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// Banner is the transient status message shown above the sections.
type Banner struct {
	Kind BannerKind `json:"kind"`
	Text string     `json:"text"`
}

// Tool names an AI call site. Each has its own in-flight flag.
type Tool string

const (
	ToolMenu  Tool = "menu"
	ToolReply Tool = "reply"
)

// PageState is everything one visitor's page holds in memory: the visible
// section, the banner and the four field-sets.
type PageState struct {
	SessionID      string               `json:"session_id"`
	Section        Section              `json:"section"`
	Banner         *Banner              `json:"banner,omitempty"`
	Identity       *SessionIdentity     `json:"identity,omitempty"`
	BootstrapError string               `json:"bootstrap_error,omitempty"`
	Reservation    ReservationRequest   `json:"reservation"`
	Contact        ContactMessage       `json:"contact"`
	Menu           MenuSuggestionParams `json:"menu"`
	MenuSuggestion string               `json:"menu_suggestion,omitempty"`
	Inquiry        ClientInquiryDraft   `json:"inquiry"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// NewPageState returns the initial state of a fresh page load.
func NewPageState(sessionID string) *PageState {
	return &PageState{
		SessionID: sessionID,
		Section:   SectionHome,
		UpdatedAt: time.Now(),
	}
}

// Ready reports whether the identity bootstrap has completed.
func (s *PageState) Ready() bool {
	return s != nil && s.Identity != nil && s.Identity.UserID != ""
}

func (s *PageState) SetBanner(kind BannerKind, text string) {
	s.Banner = &Banner{Kind: kind, Text: text}
}

// TakeBanner returns the banner and clears it so it is shown once.
func (s *PageState) TakeBanner() *Banner {
	b := s.Banner
	s.Banner = nil
	return b
}
