// Package view renders the single page. The visible section is chosen by
// Render from the page state; nothing else decides what is shown.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"privatechef/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"lines":   lines,
	"checked": func(a, b models.EventType) bool { return a == b },
}).ParseFS(templateFS, "templates/*.html"))

// Page is everything one render needs.
type Page struct {
	AppName        string
	Catalog        models.Catalog
	Sections       []models.Section
	Active         models.Section
	Banner         *models.Banner
	Ready          bool
	BootstrapError string
	UserID         string

	Reservation models.ReservationRequest
	EventTypes  []models.EventType
	MinDate     string
	Contact     models.ContactMessage

	Menu           models.MenuSuggestionParams
	MenuSuggestion string
	MenuBusy       bool
	Inquiry        models.ClientInquiryDraft
	ReplyBusy      bool
}

// NewPage builds the render input from the page state. banner is passed
// separately because the state hands it out once.
func NewPage(appName string, catalog models.Catalog, state *models.PageState, banner *models.Banner, menuBusy, replyBusy bool) Page {
	p := Page{
		AppName:        appName,
		Catalog:        catalog,
		Sections:       models.Sections(),
		Active:         models.ParseSection(string(state.Section)),
		Banner:         banner,
		Ready:          state.Ready(),
		BootstrapError: state.BootstrapError,
		Reservation:    state.Reservation,
		EventTypes:     models.EventTypes(),
		MinDate:        time.Now().Format(models.DateLayout),
		Contact:        state.Contact,
		Menu:           state.Menu,
		MenuSuggestion: state.MenuSuggestion,
		MenuBusy:       menuBusy,
		Inquiry:        state.Inquiry,
		ReplyBusy:      replyBusy,
	}
	if state.Identity != nil {
		p.UserID = state.Identity.UserID
	}
	if p.Reservation.Guests == 0 {
		p.Reservation.Guests = 1
	}
	return p
}

// SubmitDisabled reports whether the reservation and contact forms are locked.
func (p Page) SubmitDisabled() bool {
	return !p.Ready
}

func (p Page) MenuDisabled() bool {
	return !p.Ready || p.MenuBusy
}

// ReplyDisabled is true while loading, while a draft is in flight, or when
// there is no inquiry text yet.
func (p Page) ReplyDisabled() bool {
	return !p.Ready || p.ReplyBusy || !p.Inquiry.Ready()
}

// Render writes the full page with exactly one section body.
func Render(w io.Writer, p Page) error {
	name := sectionTemplate(p.Active)
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, name, p); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	data := struct {
		Page
		Body template.HTML
	}{Page: p, Body: template.HTML(body.String())}

	if err := templates.ExecuteTemplate(w, "layout.html", data); err != nil {
		return fmt.Errorf("render layout: %w", err)
	}
	return nil
}

func sectionTemplate(s models.Section) string {
	switch s {
	case models.SectionAbout:
		return "section-about"
	case models.SectionServices:
		return "section-services"
	case models.SectionReserve:
		return "section-reserve"
	case models.SectionContact:
		return "section-contact"
	default:
		return "section-home"
	}
}

// StaticHandler serves the embedded stylesheet and script.
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("view: failed to create static sub filesystem: " + err.Error())
	}
	return http.FileServer(http.FS(sub))
}

func lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
