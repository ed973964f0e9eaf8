package httpapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"retaildesk/backend/internal/domain"
	"retaildesk/backend/internal/service"
)

type authenticatorStub struct {
	user  domain.SessionUser
	err   error
	calls int
}

func (s *authenticatorStub) Login(_ context.Context, email, _ string) (domain.SessionUser, error) {
	s.calls++
	if s.err != nil {
		return domain.SessionUser{}, s.err
	}
	user := s.user
	user.Email = email
	return user, nil
}

func TestAuthManagerIssuesParsableToken(t *testing.T) {
	users := &authenticatorStub{user: domain.SessionUser{Name: "Owner", Role: domain.RoleManager}}
	manager := NewAuthManager("test-secret", time.Hour, users)

	resp, err := manager.Login(context.Background(), domain.LoginRequest{Email: "owner@shop.test", Password: "whatever1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if users.calls != 1 {
		t.Fatalf("expected credentials to be checked once, got %d", users.calls)
	}

	actor, err := manager.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if actor.Email != "owner@shop.test" || actor.Role != domain.RoleManager {
		t.Fatalf("unexpected actor %+v", actor)
	}

	expiresAt, err := time.Parse(time.RFC3339, resp.ExpiresAt)
	if err != nil {
		t.Fatalf("expires_at is not RFC3339: %v", err)
	}
	if until := time.Until(expiresAt); until <= 50*time.Minute || until > time.Hour+time.Minute {
		t.Fatalf("expected expiry about an hour ahead, got %s", until)
	}
}

func TestAuthManagerPassesCredentialErrorsThrough(t *testing.T) {
	manager := NewAuthManager("test-secret", time.Hour, &authenticatorStub{err: service.ErrInvalidCredentials})

	_, err := manager.Login(context.Background(), domain.LoginRequest{Email: "x@shop.test", Password: "nope"})
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestParseTokenRejectsForeignAndExpiredTokens(t *testing.T) {
	users := &authenticatorStub{user: domain.SessionUser{Role: domain.RoleCashier}}
	manager := NewAuthManager("test-secret", time.Hour, users)
	other := NewAuthManager("another-secret", time.Hour, users)

	foreign, err := other.sign("cashier@shop.test", domain.RoleCashier, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := manager.ParseToken(foreign); err == nil {
		t.Fatalf("expected token signed with another secret to be rejected")
	}

	manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := manager.sign("cashier@shop.test", domain.RoleCashier, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := manager.ParseToken(expired); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}

	if _, err := manager.ParseToken("not-a-jwt"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}

func TestNewAuthManagerDefaults(t *testing.T) {
	manager := NewAuthManager("", 0, &authenticatorStub{})
	if string(manager.secret) != "dev-change-me" {
		t.Fatalf("expected development secret fallback, got %q", manager.secret)
	}
	if manager.tokenTTL != 8*time.Hour {
		t.Fatalf("expected 8h default ttl, got %s", manager.tokenTTL)
	}
}
