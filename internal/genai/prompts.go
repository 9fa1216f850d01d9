package genai

import (
	"fmt"
	"strings"

	"privatechef/internal/models"
)

// MenuPrompt builds the menu idea prompt. Blank inputs get placeholder words.
func MenuPrompt(p models.MenuSuggestionParams) string {
	p = p.WithDefaults()
	return fmt.Sprintf(
		"As a professional private chef, suggest a %s-course menu for a %s occasion. "+
			"Cuisine style: %s. Dietary considerations: %s. "+
			"For each course give the course name, the dish name and a one-sentence description. "+
			"Format it as a plain list, one course per line, e.g. \"Appetizer: ...\".",
		p.Courses, p.Occasion, p.Cuisine, p.Dietary,
	)
}

// InquiryPrompt builds the prompt for drafting a reply to a client inquiry.
func InquiryPrompt(inquiry string) string {
	return fmt.Sprintf(
		"You are the assistant of a private chef. Draft a warm, professional and concise reply "+
			"to the following client inquiry. Thank the client, answer what can be answered, "+
			"and invite them to book a consultation for details.\n\nClient inquiry:\n\"%s\"",
		strings.TrimSpace(inquiry),
	)
}
