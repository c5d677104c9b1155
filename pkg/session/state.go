// Package session holds the client's authentication state: the current user,
// the token pair, and the loading/error plumbing around auth operations.
//
// State is the single source of truth the rest of the application reads to
// decide what to render. It is constructed once at startup, rehydrated from
// the persisted store before any auth decision is made, and passed by
// reference to every consumer. All mutation goes through its methods; user
// and tokens are only ever set and cleared as a pair by the auth flow.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/jobport/jobport/pkg/kvstore"
	"github.com/jobport/jobport/pkg/logger"
)

// Persisted store keys. Internal contract between State and the store;
// nothing else should write them.
const (
	tokensKey = "auth_tokens"
	userKey   = "auth_user"
)

// State is the in-memory session state backed by a durable store.
type State struct {
	mu    sync.RWMutex
	store kvstore.Store
	log   *slog.Logger

	user    *User
	tokens  *TokenPair
	loading bool
	lastErr string
}

// Option configures a State during construction.
type Option func(*State)

// WithLogger sets the logger used for rehydration diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *State) {
		if l != nil {
			s.log = l
		}
	}
}

// New constructs the session state and rehydrates it from the store.
// New returns only after rehydration completes, so callers may consult
// IsAuthenticated immediately without observing a flash of logged-out state.
func New(ctx context.Context, store kvstore.Store, opts ...Option) *State {
	s := &State{
		store: store,
		log:   logger.Noop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.rehydrate(ctx)
	return s
}

// rehydrate loads tokens and user from the store. The two keys are
// independent failure domains: a corrupt user record must not discard
// valid tokens, and vice versa. Corrupt payloads are logged, deleted,
// and otherwise self-healed without surfacing an error.
func (s *State) rehydrate(ctx context.Context) {
	if raw, ok := s.read(ctx, tokensKey); ok {
		var pair TokenPair
		if err := json.Unmarshal([]byte(raw), &pair); err != nil {
			s.log.Warn("discarding corrupt persisted tokens",
				logger.Component("session"),
				logger.Error(err),
			)
			_ = s.store.Delete(ctx, tokensKey)
		} else {
			s.tokens = &pair
		}
	}

	if raw, ok := s.read(ctx, userKey); ok {
		var user User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			s.log.Warn("discarding corrupt persisted user",
				logger.Component("session"),
				logger.Error(err),
			)
			_ = s.store.Delete(ctx, userKey)
		} else {
			s.user = &user
		}
	}
}

func (s *State) read(ctx context.Context, key string) (string, bool) {
	raw, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrKeyNotFound) {
			s.log.Warn("failed to read persisted session key",
				logger.Component("session"),
				slog.String("key", key),
				logger.Error(err),
			)
		}
		return "", false
	}
	return raw, true
}

// SetTokens replaces the token pair and persists it.
func (s *State) SetTokens(ctx context.Context, pair TokenPair) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = &pair
	return s.store.Set(ctx, tokensKey, string(data))
}

// SetUser replaces the user profile and persists it.
func (s *State) SetUser(ctx context.Context, user User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = &user
	return s.store.Set(ctx, userKey, string(data))
}

// ClearAuth removes the user, the token pair, and their persisted copies.
// Idempotent; safe to call when already cleared.
func (s *State) ClearAuth(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	s.tokens = nil
	s.lastErr = ""

	return errors.Join(
		s.store.Delete(ctx, tokensKey),
		s.store.Delete(ctx, userKey),
	)
}

// SetLoading flags an auth operation in flight. Starting a new operation
// discards the previous failure; finishing one leaves any error untouched.
func (s *State) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = loading
	if loading {
		s.lastErr = ""
	}
}

// SetError records a human-readable failure reason and forces loading false.
func (s *State) SetError(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastErr = message
	s.loading = false
}

// IsAuthenticated reports whether a non-empty access token is present.
func (s *State) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens != nil && s.tokens.Access != ""
}

// UserRole returns the current user's role, or "" when no user is set.
func (s *State) UserRole() Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Role
}

// UserStatus returns the current user's status, or "" when no user is set.
func (s *State) UserStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Status
}

// IsApproved reports whether the session is authenticated and approved.
func (s *State) IsApproved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens != nil && s.tokens.Access != "" &&
		s.user != nil && s.user.Status == StatusApproved
}

// CurrentUser returns a copy of the current user, if any.
func (s *State) CurrentUser() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Tokens returns a copy of the current token pair, if any.
func (s *State) Tokens() (TokenPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tokens == nil {
		return TokenPair{}, false
	}
	return *s.tokens, true
}

// Loading reports whether an auth operation is in flight.
func (s *State) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last recorded failure message, or "".
func (s *State) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}
