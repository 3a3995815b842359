package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrSessionNotFound is returned for unknown or expired session tokens.
var ErrSessionNotFound = errors.New("card session not found")

// CardRegistryDeps configures the registry. Template supplies everything but
// the user token and Banner ID of each new session.
type CardRegistryDeps struct {
	Template    CardSessionDeps
	IdleTimeout time.Duration // zero disables expiry
	GenerateID  func() string
	Now         func() time.Time
}

// CardRegistry holds the live card sessions keyed by session token.
type CardRegistry struct {
	deps CardRegistryDeps

	mu       sync.Mutex
	sessions map[string]*CardSession
}

// NewCardRegistry creates an empty registry.
func NewCardRegistry(deps CardRegistryDeps) *CardRegistry {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Template.Now == nil {
		deps.Template.Now = deps.Now
	}
	return &CardRegistry{deps: deps, sessions: make(map[string]*CardSession)}
}

// Open creates a session for the user, starts its first fetch and returns its token.
// POST: the session is registered and loading
func (r *CardRegistry) Open(ctx context.Context, userToken, bannerID string) (string, *CardSession) {
	deps := r.deps.Template
	deps.UserToken = userToken
	deps.BannerID = bannerID
	s := NewCardSession(deps)
	token := r.deps.GenerateID()

	r.mu.Lock()
	r.sessions[token] = s
	count := len(r.sessions)
	r.mu.Unlock()

	slog.Info("card_session_opened", "sessions", count)
	s.Load(ctx)
	return token, s
}

// Get returns the session for token and marks it used.
func (r *CardRegistry) Get(token string) (*CardSession, error) {
	r.mu.Lock()
	s, ok := r.sessions[token]
	r.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if r.expired(s) {
		r.Close(token)
		return nil, ErrSessionNotFound
	}
	s.Touch()
	return s, nil
}

// Close removes the session. Pending work finishes in the background.
func (r *CardRegistry) Close(token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}

// Len returns the number of registered sessions.
func (r *CardRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep drops sessions idle longer than the idle timeout and returns how many were dropped.
func (r *CardRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	dropped := 0
	for token, s := range r.sessions {
		if r.expired(s) {
			delete(r.sessions, token)
			dropped++
		}
	}
	if dropped > 0 {
		slog.Info("card_sessions_expired", "dropped", dropped, "remaining", len(r.sessions))
	}
	return dropped
}

// RefreshAll requests a catalog refresh on every live session.
func (r *CardRegistry) RefreshAll(ctx context.Context) int {
	r.mu.Lock()
	live := make([]*CardSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		live = append(live, s)
	}
	r.mu.Unlock()

	for _, s := range live {
		s.Refresh(ctx)
	}
	return len(live)
}

// Wait blocks until every session's pending work has settled.
func (r *CardRegistry) Wait() {
	r.mu.Lock()
	live := make([]*CardSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		live = append(live, s)
	}
	r.mu.Unlock()
	for _, s := range live {
		s.Wait()
	}
}

func (r *CardRegistry) expired(s *CardSession) bool {
	if r.deps.IdleTimeout <= 0 {
		return false
	}
	return r.deps.Now().Sub(s.IdleSince()) > r.deps.IdleTimeout
}
