package session

import (
	"code_judge_cli/internal/common"
	"code_judge_cli/internal/domain/model"
	"context"
	"errors"
	"path/filepath"
	"testing"
)

type mockValidator struct {
	me  *model.MeResponse
	err error
}

func (m *mockValidator) Me(ctx context.Context, token string) (*model.MeResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.me, nil
}

func tempTokenStore(t *testing.T) *FileTokenStore {
	t.Helper()
	return NewFileTokenStore(filepath.Join(t.TempDir(), "token"))
}

func TestInitializeWithoutTokenLeavesEmptySession(t *testing.T) {
	s := NewStore(tempTokenStore(t), &mockValidator{})
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if s.Current() != nil {
		t.Error("expected no session without a persisted token")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	tokens := tempTokenStore(t)
	validator := &mockValidator{me: &model.MeResponse{DisplayName: "alice", Email: "alice@example.com", Role: model.RoleAdmin}}

	s := NewStore(tokens, validator)
	if err := s.Login(Identity{AccessToken: "t1", DisplayName: "alice", Email: "alice@example.com", Role: model.RoleAdmin}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Simulate a process restart: a fresh store over the same token file.
	restarted := NewStore(tokens, validator)
	if err := restarted.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	id := restarted.Current()
	if id == nil {
		t.Fatal("expected session restored from persisted token")
	}
	if id.AccessToken != "t1" || id.Role != model.RoleAdmin || id.DisplayName != "alice" {
		t.Errorf("restored identity wrong: %+v", id)
	}
}

func TestInvalidTokenClearsPersistedState(t *testing.T) {
	tokens := tempTokenStore(t)
	if err := tokens.Save("expired"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	s := NewStore(tokens, &mockValidator{err: common.ErrUnauthorized})
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if s.Current() != nil {
		t.Error("expected no session after failed validation")
	}
	if token, _ := tokens.Load(); token != "" {
		t.Errorf("persisted token not erased, got %q", token)
	}
}

func TestTransportFailureTreatedAsInvalidToken(t *testing.T) {
	tokens := tempTokenStore(t)
	if err := tokens.Save("t1"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Fail safe: a network error must not leave a stale or partial session.
	s := NewStore(tokens, &mockValidator{err: errors.New("connection refused")})
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if s.Current() != nil {
		t.Error("expected no session after transport failure")
	}
	if token, _ := tokens.Load(); token != "" {
		t.Errorf("persisted token not erased, got %q", token)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	s := NewStore(tempTokenStore(t), &mockValidator{})
	s.Logout()
	s.Logout()
	if s.Current() != nil {
		t.Error("expected no session after logout")
	}
	if s.Token() != "" {
		t.Error("expected empty token after logout")
	}
}

func TestTokenReflectsCurrentSession(t *testing.T) {
	s := NewStore(tempTokenStore(t), &mockValidator{})
	if err := s.Login(Identity{AccessToken: "t2", Role: model.RoleUser}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.Token() != "t2" {
		t.Errorf("Token() = %q, want t2", s.Token())
	}
	s.Logout()
	if s.Token() != "" {
		t.Error("token survives logout")
	}
}
