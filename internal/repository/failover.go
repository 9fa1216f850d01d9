package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"privatechef/internal/domain"
	"privatechef/internal/models"

	"github.com/rs/zerolog"
)

// FailoverStateRepository uses the primary store until it fails, then serves
// from the fallback and retries the primary once a minute.
type FailoverStateRepository struct {
	primary   domain.PageStateRepository
	fallback  domain.PageStateRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverStateRepository(primary, fallback domain.PageStateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	return &FailoverStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverStateRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary state repository failed, falling back to memory")
	r.isDown.Store(true)
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

// usePrimary reports whether the next call should go to the primary store.
func (r *FailoverStateRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// Try to recover after 1 minute
	if time.Since(r.lastCheck) > time.Minute {
		r.lastCheck = time.Now()
		return true
	}
	return false
}

func (r *FailoverStateRepository) recovered() {
	if r.isDown.CompareAndSwap(true, false) {
		r.logger.Info().Msg("Primary state repository recovered")
	}
}

// GetState prefers the primary. A miss there is checked against the fallback,
// which holds every session written while the primary was away.
func (r *FailoverStateRepository) GetState(ctx context.Context, sessionID string) (*models.PageState, error) {
	if r.usePrimary() {
		state, err := r.primary.GetState(ctx, sessionID)
		if err == nil {
			r.recovered()
			if state != nil {
				return state, nil
			}
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.GetState(ctx, sessionID)
}

// SetState writes through to the fallback as well, so an outage of the
// primary never loses a session that is already signed in.
func (r *FailoverStateRepository) SetState(ctx context.Context, state *models.PageState) error {
	if r.usePrimary() {
		if err := r.primary.SetState(ctx, state); err == nil {
			r.recovered()
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.SetState(ctx, state)
}

// AcquireInflight refuses while the fallback still holds a flag taken during
// an outage, so a recovered primary cannot hand out a second one.
func (r *FailoverStateRepository) AcquireInflight(ctx context.Context, sessionID string, tool models.Tool, token string, ttl time.Duration) (bool, error) {
	if busy, err := r.fallback.IsInflight(ctx, sessionID, tool); err == nil && busy {
		return false, nil
	}
	if r.usePrimary() {
		ok, err := r.primary.AcquireInflight(ctx, sessionID, tool, token, ttl)
		if err == nil {
			r.recovered()
			return ok, nil
		}
		r.markDown(err)
	}
	return r.fallback.AcquireInflight(ctx, sessionID, tool, token, ttl)
}

func (r *FailoverStateRepository) ExtendInflight(ctx context.Context, sessionID string, tool models.Tool, token string, ttl time.Duration) (bool, error) {
	if r.usePrimary() {
		ok, err := r.primary.ExtendInflight(ctx, sessionID, tool, token, ttl)
		if err == nil {
			r.recovered()
			if ok {
				return true, nil
			}
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.ExtendInflight(ctx, sessionID, tool, token, ttl)
}

// ReleaseInflight clears the flag wherever token owns it.
func (r *FailoverStateRepository) ReleaseInflight(ctx context.Context, sessionID string, tool models.Tool, token string) error {
	if r.usePrimary() {
		if err := r.primary.ReleaseInflight(ctx, sessionID, tool, token); err == nil {
			r.recovered()
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.ReleaseInflight(ctx, sessionID, tool, token)
}

func (r *FailoverStateRepository) IsInflight(ctx context.Context, sessionID string, tool models.Tool) (bool, error) {
	if r.usePrimary() {
		busy, err := r.primary.IsInflight(ctx, sessionID, tool)
		if err == nil {
			r.recovered()
			if busy {
				return true, nil
			}
		} else {
			r.markDown(err)
		}
	}
	return r.fallback.IsInflight(ctx, sessionID, tool)
}
