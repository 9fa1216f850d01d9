package service

import (
	"context"
	"fmt"
	"time"

	"privatechef/internal/domain"
	"privatechef/internal/metrics"
	"privatechef/internal/models"
	"privatechef/internal/outcome"

	"github.com/rs/zerolog"
)

// SessionService owns the page state of each visitor session.
type SessionService struct {
	states    domain.PageStateRepository
	bootstrap domain.IdentityBootstrapper
	logger    *zerolog.Logger
}

func NewSessionService(states domain.PageStateRepository, bootstrap domain.IdentityBootstrapper, logger *zerolog.Logger) *SessionService {
	return &SessionService{
		states:    states,
		bootstrap: bootstrap,
		logger:    logger,
	}
}

// Load returns the page state of sessionID. A session seen for the first time
// gets a fresh state and one bootstrap attempt; a failed bootstrap is kept as
// an error and never retried for that session.
func (s *SessionService) Load(ctx context.Context, sessionID string) (*models.PageState, error) {
	state, err := s.states.GetState(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to get page state")
		return nil, err
	}
	if state != nil {
		return state, nil
	}

	state = models.NewPageState(sessionID)
	s.runBootstrap(ctx, state)

	if err := s.states.SetState(ctx, state); err != nil {
		return nil, fmt.Errorf("save new page state: %w", err)
	}
	return state, nil
}

func (s *SessionService) runBootstrap(ctx context.Context, state *models.PageState) {
	if s.bootstrap == nil {
		state.BootstrapError = "Application not ready: sign-in is not configured."
		state.SetBanner(models.BannerError, state.BootstrapError)
		return
	}

	identity, err := s.bootstrap.Bootstrap(ctx)
	metrics.ObserveCall("identity", err)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", state.SessionID).Msg("identity bootstrap failed")
		state.BootstrapError = "Authentication failed: " + outcome.Message(err)
		state.SetBanner(models.BannerError, state.BootstrapError)
		return
	}

	state.Identity = identity
	s.logger.Info().Str("session_id", state.SessionID).Str("user_id", identity.UserID).Bool("anonymous", identity.Anonymous).Msg("session signed in")
}

// Update reloads the state, applies fn and saves it. Handlers that waited on
// an external call use it so changes made meanwhile by other requests survive.
func (s *SessionService) Update(ctx context.Context, sessionID string, fn func(*models.PageState)) (*models.PageState, error) {
	state, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	fn(state)
	state.UpdatedAt = time.Now()
	if err := s.states.SetState(ctx, state); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to save page state")
		return nil, err
	}
	return state, nil
}

// Show makes section the visible one and hands out the pending banner, which
// is shown once.
func (s *SessionService) Show(ctx context.Context, sessionID string, section models.Section) (*models.PageState, *models.Banner, error) {
	var banner *models.Banner
	state, err := s.Update(ctx, sessionID, func(state *models.PageState) {
		state.Section = section
		banner = state.TakeBanner()
	})
	if err != nil {
		return nil, nil, err
	}
	return state, banner, nil
}
