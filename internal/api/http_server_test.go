package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"privatechef/internal/config"
	"privatechef/internal/genai"
	"privatechef/internal/identity"
	"privatechef/internal/models"
	"privatechef/internal/relay"
	"privatechef/internal/repository"
	"privatechef/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu      sync.Mutex
	records []*models.ReservationRecord
}

func (m *memoryStore) AppendReservation(ctx context.Context, record *models.ReservationRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, record)
	return "res-1", nil
}

func (m *memoryStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// upstream fakes the identity provider, the form relay and the text API.
type upstream struct {
	server        *httptest.Server
	identityCalls atomic.Int32
	relayCalls    atomic.Int32
	genaiCalls    atomic.Int32

	identityStatus int
	relayStatus    int
	relayBody      string
	genaiText      string
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()
	u := &upstream{
		identityStatus: http.StatusOK,
		relayStatus:    http.StatusOK,
		genaiText:      "Course 1: Citrus crudo",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/identity/accounts:signUp", func(w http.ResponseWriter, r *http.Request) {
		u.identityCalls.Add(1)
		if u.identityStatus != http.StatusOK {
			w.WriteHeader(u.identityStatus)
			_, _ = io.WriteString(w, `{"error":{"code":400,"message":"ADMIN_ONLY_OPERATION"}}`)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"idToken": "tok", "localId": "uid-7"})
	})
	mux.HandleFunc("/relay", func(w http.ResponseWriter, r *http.Request) {
		u.relayCalls.Add(1)
		w.WriteHeader(u.relayStatus)
		_, _ = io.WriteString(w, u.relayBody)
	})
	mux.HandleFunc("/genai/models/test-model:generateContent", func(w http.ResponseWriter, r *http.Request) {
		u.genaiCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": u.genaiText}}},
			}},
		})
	})

	u.server = httptest.NewServer(mux)
	t.Cleanup(u.server.Close)
	return u
}

type site struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
	store   *memoryStore
	up      *upstream
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Name: "Chef Marta"},
		HTTP:    config.HTTPConfig{Port: 8080},
		Session: config.SessionConfig{CookieName: "chef_session", TTLMinutes: 60},
		Firebase: config.FirebaseConfig{
			AppID:     "chef-app",
			ProjectID: "chef-project",
			APIKey:    "key",
		},
	}
}

func newSite(t *testing.T, up *upstream) *site {
	t.Helper()
	logger := zerolog.New(io.Discard)
	cfg := testConfig()

	states := repository.NewMemoryStateRepository(time.Hour)
	store := &memoryStore{}
	provider := identity.NewProvider(up.server.URL+"/identity", "key", up.server.Client(), &logger)
	relayClient := relay.NewClient(up.server.URL+"/relay", up.server.Client(), &logger)
	generator := genai.NewClient(up.server.URL+"/genai", "test-model", "key", up.server.Client(), &logger)

	pages := service.NewPageService(
		service.NewSessionService(states, identity.NewBootstrapper(provider, ""), &logger),
		service.NewReservationService(store, nil, &logger),
		service.NewContactService(relayClient, nil, &logger),
		service.NewAssistantService(generator, states, time.Minute, &logger),
	)

	srv := NewHTTPServer(cfg, pages, models.DefaultCatalog(), &logger)
	return &site{t: t, handler: srv.Handler(), store: store, up: up}
}

func (s *site) do(req *http.Request) *httptest.ResponseRecorder {
	s.t.Helper()
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == "chef_session" {
			s.cookie = c
		}
	}
	return rec
}

func (s *site) get(path string) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (s *site) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func reservationForm() url.Values {
	return url.Values{
		"name":      {"Ann Lee"},
		"email":     {"ann@example.com"},
		"phone":     {"555-0100"},
		"date":      {"2026-12-24"},
		"time":      {"19:30"},
		"guests":    {"4"},
		"eventType": {"private-dinner"},
	}
}

func TestPageRendersOnlyRequestedSection(t *testing.T) {
	s := newSite(t, newUpstream(t))

	rec := s.get("/about")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, `data-section="about"`)
	for _, other := range []string{"home", "services", "reserve", "contact"} {
		assert.NotContains(t, body, `data-section="`+other+`"`)
	}
	assert.Contains(t, body, `href="/contact"`)
	require.NotNil(t, s.cookie)
	assert.True(t, s.cookie.HttpOnly)
}

func TestUnknownSectionShowsHome(t *testing.T) {
	s := newSite(t, newUpstream(t))

	rec := s.get("/pricing")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `data-section="home"`)
}

func TestSessionBootstrapsOnce(t *testing.T) {
	up := newUpstream(t)
	s := newSite(t, up)

	s.get("/")
	first := s.cookie.Value
	s.get("/about")
	s.get("/services")

	assert.Equal(t, first, s.cookie.Value)
	assert.Equal(t, int32(1), up.identityCalls.Load())
}

func TestReservationSuccessClearsForm(t *testing.T) {
	s := newSite(t, newUpstream(t))
	s.get("/")

	rec := s.post("/reserve", reservationForm())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/reserve", rec.Header().Get("Location"))
	assert.Equal(t, 1, s.store.count())

	body := s.get("/reserve").Body.String()
	assert.Contains(t, body, "Reservation submitted successfully!")
	assert.NotContains(t, body, `value="Ann Lee"`)

	// the banner is shown once
	assert.NotContains(t, s.get("/reserve").Body.String(), "Reservation submitted successfully!")
}

func TestReservationValidationKeepsForm(t *testing.T) {
	s := newSite(t, newUpstream(t))
	s.get("/")

	form := reservationForm()
	form.Del("phone")
	rec := s.post("/reserve", form)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, 0, s.store.count())

	body := s.get("/reserve").Body.String()
	assert.Contains(t, body, "Please check the form")
	assert.Contains(t, body, `value="Ann Lee"`)
}

func TestNotReadyMakesNoExternalCalls(t *testing.T) {
	up := newUpstream(t)
	up.identityStatus = http.StatusBadRequest
	s := newSite(t, up)

	page := s.get("/reserve").Body.String()
	assert.Contains(t, page, "data-loading")
	assert.Contains(t, page, "Authentication failed")
	assert.Contains(t, page, `id="reserve-submit" disabled`)

	s.post("/reserve", reservationForm())
	s.post("/contact", url.Values{"name": {"Ann"}, "email": {"ann@example.com"}, "message": {"Hello"}})

	assert.Equal(t, 0, s.store.count())
	assert.Equal(t, int32(0), up.relayCalls.Load())
	assert.Contains(t, s.get("/contact").Body.String(), "Application not ready")
	assert.Equal(t, int32(1), up.identityCalls.Load())
}

func TestContactRejectedKeepsForm(t *testing.T) {
	up := newUpstream(t)
	up.relayStatus = http.StatusUnprocessableEntity
	up.relayBody = `{"error":"Invalid email address"}`
	s := newSite(t, up)
	s.get("/")

	rec := s.post("/contact", url.Values{"name": {"Ann"}, "email": {"ann@example"}, "message": {"Hello"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/contact", rec.Header().Get("Location"))

	body := s.get("/contact").Body.String()
	assert.Contains(t, body, "Invalid email address")
	assert.Contains(t, body, `value="ann@example"`)
	assert.Equal(t, int32(1), up.relayCalls.Load())
}

func TestContactSuccessClearsForm(t *testing.T) {
	up := newUpstream(t)
	s := newSite(t, up)
	s.get("/")

	s.post("/contact", url.Values{"name": {"Ann"}, "email": {"ann@example.com"}, "message": {"Hello"}})

	body := s.get("/contact").Body.String()
	assert.Contains(t, body, "Thank you for your message!")
	assert.NotContains(t, body, `value="ann@example.com"`)
}

func TestMenuSuggestionShownOnServices(t *testing.T) {
	up := newUpstream(t)
	s := newSite(t, up)
	s.get("/")

	rec := s.post("/assistant/menu", url.Values{"cuisine": {"Thai"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/services", rec.Header().Get("Location"))

	body := s.get("/services").Body.String()
	assert.Contains(t, body, "Course 1: Citrus crudo")
	assert.Contains(t, body, `value="Thai"`)
	assert.Equal(t, int32(1), up.genaiCalls.Load())
}

func TestBlankInquiryNeverCallsAssistant(t *testing.T) {
	up := newUpstream(t)
	s := newSite(t, up)
	s.get("/")

	s.post("/assistant/reply", url.Values{"inquiry": {"   "}})

	assert.Equal(t, int32(0), up.genaiCalls.Load())
	assert.Contains(t, s.get("/contact").Body.String(), `id="reply-submit" disabled`)
}

func TestHealthz(t *testing.T) {
	s := newSite(t, newUpstream(t))

	rec := s.get("/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["store"])
	assert.Nil(t, s.cookie)
}

func TestStaticAssetsServed(t *testing.T) {
	s := newSite(t, newUpstream(t))

	rec := s.get("/static/app.css")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDEchoed(t *testing.T) {
	s := newSite(t, newUpstream(t))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rec := s.do(req)
	assert.Equal(t, "req-123", rec.Header().Get(requestIDHeader))

	rec = s.get("/healthz")
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}
