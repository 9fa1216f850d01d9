package models

import (
	"strconv"
	"strings"
)

// MenuSuggestionParams are the inputs of the menu idea generator.
type MenuSuggestionParams struct {
	Cuisine  string `json:"cuisine"`
	Dietary  string `json:"dietary"`
	Occasion string `json:"occasion"`
	Courses  string `json:"courses"`
}

// WithDefaults fills blank inputs with placeholder words. The course count
// must be a positive integer; anything else counts as blank.
func (p MenuSuggestionParams) WithDefaults() MenuSuggestionParams {
	return MenuSuggestionParams{
		Cuisine:  orDefault(p.Cuisine, DefaultCuisine),
		Dietary:  orDefault(p.Dietary, DefaultDietary),
		Occasion: orDefault(p.Occasion, DefaultOccasion),
		Courses:  courseCount(p.Courses),
	}
}

// ClientInquiryDraft holds a client's question and the drafted reply.
type ClientInquiryDraft struct {
	Inquiry  string `json:"inquiry"`
	Response string `json:"response"`
}

// Ready reports whether there is something to draft a reply for.
func (d ClientInquiryDraft) Ready() bool {
	return strings.TrimSpace(d.Inquiry) != ""
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

func courseCount(v string) string {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return DefaultCourses
	}
	return strconv.Itoa(n)
}
