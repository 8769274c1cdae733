package session

import (
	"code_judge_cli/internal/domain/model"
	"context"
	"sync"
)

// Identity is the in-memory record of who is logged in. The access token is
// the only part that survives a process restart; everything else is re-derived
// by validating the token on the next startup.
type Identity struct {
	AccessToken string
	DisplayName string
	Email       string
	Role        string
}

// TokenStore persists the single access-token string between process runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Validator checks a candidate token against the identity endpoint. The API
// client satisfies this.
type Validator interface {
	Me(ctx context.Context, token string) (*model.MeResponse, error)
}

// Store owns the one session that exists process-wide. All components read
// identity through it; none may cache a copy across a logout.
type Store struct {
	mu        sync.RWMutex
	tokens    TokenStore
	validator Validator
	current   *Identity
}

func NewStore(tokens TokenStore, validator Validator) *Store {
	return &Store{tokens: tokens, validator: validator}
}

// Initialize restores a session from a persisted token. A missing token
// leaves the store empty. Any validation failure, transport included, is
// treated as an invalid token: the persisted value is erased and the store
// stays empty rather than holding a session the server would reject.
func (s *Store) Initialize(ctx context.Context) error {
	token, err := s.tokens.Load()
	if err != nil || token == "" {
		return nil
	}

	me, err := s.validator.Me(ctx, token)
	if err != nil {
		s.Logout()
		return nil
	}

	s.mu.Lock()
	s.current = &Identity{
		AccessToken: token,
		DisplayName: me.DisplayName,
		Email:       me.Email,
		Role:        me.Role,
	}
	s.mu.Unlock()
	return nil
}

// Login installs a freshly authenticated identity and persists its token.
func (s *Store) Login(id Identity) error {
	s.mu.Lock()
	s.current = &id
	s.mu.Unlock()
	return s.tokens.Save(id.AccessToken)
}

// Logout clears the session and the persisted token. Calling it with no
// active session is a no-op.
func (s *Store) Logout() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	_ = s.tokens.Clear()
}

// Current returns a copy of the active identity, or nil when logged out.
func (s *Store) Current() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	id := *s.current
	return &id
}

// Token returns the active bearer token, or "" when logged out. It is the
// client's TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	return s.current.AccessToken
}
