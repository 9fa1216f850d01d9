package models

import "strings"

// Section is one of the five mutually exclusive page sections.
type Section string

const (
	SectionHome     Section = "home"
	SectionAbout    Section = "about"
	SectionServices Section = "services"
	SectionReserve  Section = "reserve"
	SectionContact  Section = "contact"
)

// Sections returns every section in navigation order.
func Sections() []Section {
	return []Section{SectionHome, SectionAbout, SectionServices, SectionReserve, SectionContact}
}

// ParseSection maps a label to a section. Unknown labels select home.
func ParseSection(label string) Section {
	s := Section(strings.ToLower(strings.TrimSpace(label)))
	for _, known := range Sections() {
		if s == known {
			return s
		}
	}
	return SectionHome
}

func (s Section) Title() string {
	switch s {
	case SectionAbout:
		return "About"
	case SectionServices:
		return "Services"
	case SectionReserve:
		return "Reserve"
	case SectionContact:
		return "Contact"
	default:
		return "Home"
	}
}
