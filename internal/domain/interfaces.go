package domain

import (
	"context"
	"time"

	"privatechef/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// PageStateRepository keeps one PageState per visitor session.
type PageStateRepository interface {
	GetState(ctx context.Context, sessionID string) (*models.PageState, error)
	SetState(ctx context.Context, state *models.PageState) error
	// AcquireInflight sets the busy flag of tool for the session, owned by
	// token. It returns false when the flag is already set.
	AcquireInflight(ctx context.Context, sessionID string, tool models.Tool, token string, ttl time.Duration) (bool, error)
	// ExtendInflight pushes the expiry of a flag still owned by token. It
	// returns false when the flag expired or belongs to someone else.
	ExtendInflight(ctx context.Context, sessionID string, tool models.Tool, token string, ttl time.Duration) (bool, error)
	// ReleaseInflight clears the flag only while token still owns it.
	ReleaseInflight(ctx context.Context, sessionID string, tool models.Tool, token string) error
	IsInflight(ctx context.Context, sessionID string, tool models.Tool) (bool, error)
}

type ReservationStore interface {
	AppendReservation(ctx context.Context, record *models.ReservationRecord) (string, error)
}

type ContactRelay interface {
	Send(ctx context.Context, msg models.ContactMessage) error
}

type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type IdentityBootstrapper interface {
	Bootstrap(ctx context.Context) (*models.SessionIdentity, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type MirrorQueue interface {
	EnqueueReservation(ctx context.Context, record *models.ReservationRecord) error
}
