package repository

import (
	"context"
	"sync"
	"time"

	"privatechef/internal/models"
)

const memorySweepInterval = time.Minute

// MemoryStateRepository keeps page state in process. Entries expire after ttl.
type MemoryStateRepository struct {
	mu        sync.Mutex
	states    map[string]memoryEntry
	inflight  map[string]inflightEntry
	ttl       time.Duration
	now       func() time.Time
	lastSweep time.Time
}

type memoryEntry struct {
	state     models.PageState
	expiresAt time.Time
}

type inflightEntry struct {
	token     string
	expiresAt time.Time
}

func NewMemoryStateRepository(ttl time.Duration) *MemoryStateRepository {
	return &MemoryStateRepository{
		states:   make(map[string]memoryEntry),
		inflight: make(map[string]inflightEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// GetState returns a copy so callers cannot mutate the stored value.
func (r *MemoryStateRepository) GetState(ctx context.Context, sessionID string) (*models.PageState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.states[sessionID]
	if !ok {
		return nil, nil
	}
	if r.ttl > 0 && r.now().After(entry.expiresAt) {
		delete(r.states, sessionID)
		return nil, nil
	}
	state := entry.state
	return &state, nil
}

func (r *MemoryStateRepository) SetState(ctx context.Context, state *models.PageState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.states[state.SessionID] = memoryEntry{state: *state, expiresAt: now.Add(r.ttl)}
	if now.Sub(r.lastSweep) > memorySweepInterval {
		r.sweep(now)
	}
	return nil
}

// sweep drops expired sessions and flags. Caller holds mu.
func (r *MemoryStateRepository) sweep(now time.Time) {
	r.lastSweep = now
	if r.ttl > 0 {
		for id, entry := range r.states {
			if now.After(entry.expiresAt) {
				delete(r.states, id)
			}
		}
	}
	for key, entry := range r.inflight {
		if !now.Before(entry.expiresAt) {
			delete(r.inflight, key)
		}
	}
}

func (r *MemoryStateRepository) AcquireInflight(ctx context.Context, sessionID string, tool models.Tool, token string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := inflightKey(sessionID, tool)
	now := r.now()
	if entry, ok := r.inflight[key]; ok && now.Before(entry.expiresAt) {
		return false, nil
	}
	r.inflight[key] = inflightEntry{token: token, expiresAt: now.Add(ttl)}
	return true, nil
}

func (r *MemoryStateRepository) ExtendInflight(ctx context.Context, sessionID string, tool models.Tool, token string, ttl time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := inflightKey(sessionID, tool)
	now := r.now()
	entry, ok := r.inflight[key]
	if !ok || entry.token != token || !now.Before(entry.expiresAt) {
		return false, nil
	}
	entry.expiresAt = now.Add(ttl)
	r.inflight[key] = entry
	return true, nil
}

func (r *MemoryStateRepository) ReleaseInflight(ctx context.Context, sessionID string, tool models.Tool, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := inflightKey(sessionID, tool)
	if entry, ok := r.inflight[key]; ok && entry.token == token {
		delete(r.inflight, key)
	}
	return nil
}

func (r *MemoryStateRepository) IsInflight(ctx context.Context, sessionID string, tool models.Tool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.inflight[inflightKey(sessionID, tool)]
	return ok && r.now().Before(entry.expiresAt), nil
}
