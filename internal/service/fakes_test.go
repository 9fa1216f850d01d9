package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"privatechef/internal/models"
	"privatechef/internal/repository"

	"github.com/rs/zerolog"
)

func testLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type fakeStore struct {
	mu      sync.Mutex
	records []*models.ReservationRecord
	err     error
}

func (f *fakeStore) AppendReservation(ctx context.Context, record *models.ReservationRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *record
	f.records = append(f.records, &copied)
	if f.err != nil {
		return "", f.err
	}
	return "doc-1", nil
}

func (f *fakeStore) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeRelay struct {
	sent []models.ContactMessage
	err  error
}

func (f *fakeRelay) Send(ctx context.Context, msg models.ContactMessage) error {
	f.sent = append(f.sent, msg)
	return f.err
}

// fakeGenerator answers with text, or blocks until release is closed when set.
type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	text    string
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.text, f.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type fakeBootstrapper struct {
	calls    int
	identity *models.SessionIdentity
	err      error
}

func (f *fakeBootstrapper) Bootstrap(ctx context.Context) (*models.SessionIdentity, error) {
	f.calls++
	return f.identity, f.err
}

type recordingBus struct {
	types    []string
	payloads []interface{}
}

func (b *recordingBus) PublishJSON(eventType string, payload interface{}) error {
	b.types = append(b.types, eventType)
	b.payloads = append(b.payloads, payload)
	return nil
}

func readyIdentity() *models.SessionIdentity {
	return &models.SessionIdentity{UserID: "uid-42", Anonymous: true, IssuedAt: time.Now()}
}

func validReservation() models.ReservationRequest {
	return models.ReservationRequest{
		Name:      "Ann Lee",
		Email:     "ann@example.com",
		Phone:     "555-0100",
		Date:      "2026-12-24",
		Time:      "19:30",
		Guests:    4,
		EventType: models.EventPrivateDinner,
	}
}

type harness struct {
	store     *fakeStore
	relay     *fakeRelay
	generator *fakeGenerator
	boot      *fakeBootstrapper
	states    *repository.MemoryStateRepository
	page      *PageService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:     &fakeStore{},
		relay:     &fakeRelay{},
		generator: &fakeGenerator{text: "Appetizer: Burrata with figs"},
		boot:      &fakeBootstrapper{identity: readyIdentity()},
		states:    repository.NewMemoryStateRepository(time.Hour),
	}
	logger := testLogger()
	sessions := NewSessionService(h.states, h.boot, logger)
	h.page = NewPageService(
		sessions,
		NewReservationService(h.store, nil, logger),
		NewContactService(h.relay, nil, logger),
		NewAssistantService(h.generator, h.states, time.Minute, logger),
	)
	return h
}
