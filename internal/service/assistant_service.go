package service

import (
	"context"
	"fmt"
	"time"

	"privatechef/internal/domain"
	"privatechef/internal/genai"
	"privatechef/internal/metrics"
	"privatechef/internal/models"
	"privatechef/internal/outcome"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AssistantService runs the two text-generation tools. Each tool of a session
// has its own in-flight flag; a call while the flag is set returns ErrBusy.
type AssistantService struct {
	generator   domain.TextGenerator
	states      domain.PageStateRepository
	sanitizer   *Sanitizer
	inflightTTL time.Duration
	logger      *zerolog.Logger
}

func NewAssistantService(generator domain.TextGenerator, states domain.PageStateRepository, inflightTTL time.Duration, logger *zerolog.Logger) *AssistantService {
	if inflightTTL <= 0 {
		inflightTTL = models.InflightTTL * time.Second
	}
	return &AssistantService{
		generator:   generator,
		states:      states,
		sanitizer:   NewSanitizer(),
		inflightTTL: inflightTTL,
		logger:      logger,
	}
}

// SuggestMenu returns a menu idea for params.
func (s *AssistantService) SuggestMenu(ctx context.Context, sessionID string, params models.MenuSuggestionParams) (string, error) {
	prompt := genai.MenuPrompt(s.sanitizer.Menu(params))
	return s.run(ctx, sessionID, models.ToolMenu, prompt)
}

// DraftReply returns a reply draft for inquiry. A blank inquiry is refused
// before any flag is taken or request is made.
func (s *AssistantService) DraftReply(ctx context.Context, sessionID, inquiry string) (string, error) {
	inquiry = s.sanitizer.Text(inquiry)
	if !(models.ClientInquiryDraft{Inquiry: inquiry}).Ready() {
		return "", fmt.Errorf("%w: inquiry is empty", models.ErrValidation)
	}
	return s.run(ctx, sessionID, models.ToolReply, genai.InquiryPrompt(inquiry))
}

// Busy reports the in-flight flag of tool for the session.
func (s *AssistantService) Busy(ctx context.Context, sessionID string, tool models.Tool) bool {
	busy, err := s.states.IsInflight(ctx, sessionID, tool)
	if err != nil {
		s.logger.Warn().Err(err).Str("tool", string(tool)).Msg("read inflight flag")
		return false
	}
	return busy
}

func (s *AssistantService) run(ctx context.Context, sessionID string, tool models.Tool, prompt string) (string, error) {
	if s.generator == nil {
		metrics.ObserveCall("genai", outcome.NewNotReady(""))
		return "", outcome.NewNotReady("The assistant is not configured.")
	}

	token := uuid.NewString()
	acquired, err := s.states.AcquireInflight(ctx, sessionID, tool, token, s.inflightTTL)
	if err != nil {
		return "", fmt.Errorf("acquire %s flag: %w", tool, err)
	}
	if !acquired {
		metrics.IncBusy(string(tool))
		return "", models.ErrBusy
	}
	// the request context may already be cancelled; the flag must still go
	flagCtx := context.WithoutCancel(ctx)
	stopKeepAlive := s.keepInflight(flagCtx, sessionID, tool, token)
	defer func() {
		stopKeepAlive()
		if err := s.states.ReleaseInflight(flagCtx, sessionID, tool, token); err != nil {
			s.logger.Error().Err(err).Str("tool", string(tool)).Msg("release inflight flag")
		}
	}()

	start := time.Now()
	text, err := s.generator.Generate(ctx, prompt)
	metrics.ObserveCall("genai_"+string(tool), err)
	if err != nil {
		s.logger.Error().Err(err).Str("tool", string(tool)).Dur("elapsed", time.Since(start)).Msg("text generation failed")
		return "", err
	}

	s.logger.Info().Str("tool", string(tool)).Int("chars", len(text)).Dur("elapsed", time.Since(start)).Msg("text generated")
	return text, nil
}

// keepInflight renews the flag while the call runs. The generation call has no
// deadline, so the TTL only bounds flags left behind by a crashed process.
// The returned func stops renewal and waits for the renewer to exit.
func (s *AssistantService) keepInflight(ctx context.Context, sessionID string, tool models.Tool, token string) func() {
	interval := s.inflightTTL / 3
	if interval <= 0 {
		interval = time.Millisecond
	}
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ok, err := s.states.ExtendInflight(ctx, sessionID, tool, token, s.inflightTTL)
				if err != nil {
					s.logger.Warn().Err(err).Str("tool", string(tool)).Msg("extend inflight flag")
					continue
				}
				if !ok {
					s.logger.Warn().Str("tool", string(tool)).Str("session_id", sessionID).Msg("inflight flag lost before the call finished")
					return
				}
			}
		}
	}()

	return func() {
		close(done)
		<-exited
	}
}
