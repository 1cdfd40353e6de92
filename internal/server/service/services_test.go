package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/config"
	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/repository"
	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/repository/sqlite"
)

func newTestServices(t *testing.T, dsn string) *Services {
	t.Helper()
	return newTestServicesTTL(t, dsn, 24*time.Hour)
}

func newTestServicesTTL(t *testing.T, dsn string, ttl time.Duration) *Services {
	t.Helper()
	repo, err := sqlite.New(dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return NewServices(repo, config.Config{
		JWTSecret:         "test",
		SessionTTL:        ttl,
		BootstrapUser:     "admin",
		BootstrapPassword: "password123",
	})
}

func TestBootstrapCreatesDefaultOnce(t *testing.T) {
	svcs := newTestServices(t, "file:svc_bootstrap?mode=memory&cache=shared")
	ctx := context.Background()

	created, err := svcs.Auth.Bootstrap(ctx)
	if err != nil || !created {
		t.Fatalf("first bootstrap: %v %v", created, err)
	}
	created, err = svcs.Auth.Bootstrap(ctx)
	if err != nil || created {
		t.Fatalf("second bootstrap should be a no-op: %v %v", created, err)
	}
	_, ident, err := svcs.Auth.Login(ctx, "admin", "password123")
	if err != nil || !ident.IsDefaultAccount {
		t.Fatalf("default login: %v %+v", err, ident)
	}
}

func TestLoginResolveLogout(t *testing.T) {
	svcs := newTestServices(t, "file:svc_login?mode=memory&cache=shared")
	ctx := context.Background()
	if _, err := svcs.Auth.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}

	if _, _, err := svcs.Auth.Login(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, _, err := svcs.Auth.Login(ctx, "nobody", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user: %v", err)
	}

	token, _, err := svcs.Auth.Login(ctx, "admin", "password123")
	if err != nil || token == "" {
		t.Fatalf("login: %v", err)
	}
	ident, err := svcs.Auth.Resolve(ctx, token)
	if err != nil || ident.Username != "admin" {
		t.Fatalf("resolve: %v %+v", err, ident)
	}

	if err := svcs.Auth.Logout(ctx, token); err != nil {
		t.Fatal(err)
	}
	if _, err := svcs.Auth.Resolve(ctx, token); !errors.Is(err, repository.ErrSessionMissing) {
		t.Fatalf("resolve after logout: %v", err)
	}
	// logging out again is a no-op
	if err := svcs.Auth.Logout(ctx, token); err != nil {
		t.Fatal(err)
	}
}

func TestResolveTamperedToken(t *testing.T) {
	svcs := newTestServices(t, "file:svc_tampered?mode=memory&cache=shared")
	ctx := context.Background()
	if _, err := svcs.Auth.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svcs.Auth.Resolve(ctx, "not-a-jwt"); !errors.Is(err, repository.ErrSessionMissing) {
		t.Fatalf("tampered token: %v", err)
	}
}

func TestExpiredSessionResolvesExpired(t *testing.T) {
	svcs := newTestServicesTTL(t, "file:svc_expired?mode=memory&cache=shared", -time.Minute)
	ctx := context.Background()
	if _, err := svcs.Auth.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	token, _, err := svcs.Auth.Login(ctx, "admin", "password123")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svcs.Auth.Resolve(ctx, token); !errors.Is(err, repository.ErrSessionExpired) {
		t.Fatalf("want expired, got %v", err)
	}
	// the row was purged, so the same token is now simply unknown
	if _, err := svcs.Auth.Resolve(ctx, token); !errors.Is(err, repository.ErrSessionMissing) {
		t.Fatalf("want missing after purge, got %v", err)
	}
}

func TestCreateAccountValidation(t *testing.T) {
	svcs := newTestServices(t, "file:svc_accounts?mode=memory&cache=shared")
	ctx := context.Background()
	if _, err := svcs.Auth.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := svcs.Auth.CreateAccount(ctx, "alice", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("weak password: %v", err)
	}
	if _, err := svcs.Auth.CreateAccount(ctx, "", "secret1"); err == nil {
		t.Fatalf("empty username accepted")
	}
	ident, err := svcs.Auth.CreateAccount(ctx, "alice", "secret1")
	if err != nil || ident.IsDefaultAccount {
		t.Fatalf("create: %v %+v", err, ident)
	}
	if _, err := svcs.Auth.CreateAccount(ctx, "alice", "secret2"); !errors.Is(err, repository.ErrDuplicateUsername) {
		t.Fatalf("duplicate: %v", err)
	}
}

func TestDefaultFlagClearedOnFirstRealLogin(t *testing.T) {
	svcs := newTestServices(t, "file:svc_default_flag?mode=memory&cache=shared")
	ctx := context.Background()
	if _, err := svcs.Auth.Bootstrap(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svcs.Auth.CreateAccount(ctx, "alice", "secret1"); err != nil {
		t.Fatal(err)
	}

	// default flag survives until the new account is actually used
	_, admin, err := svcs.Auth.Login(ctx, "admin", "password123")
	if err != nil || !admin.IsDefaultAccount {
		t.Fatalf("admin still default: %v %+v", err, admin)
	}

	if _, _, err := svcs.Auth.Login(ctx, "alice", "secret1"); err != nil {
		t.Fatal(err)
	}
	_, admin, err = svcs.Auth.Login(ctx, "admin", "password123")
	if err != nil || admin.IsDefaultAccount {
		t.Fatalf("default flag not cleared: %v %+v", err, admin)
	}
}
