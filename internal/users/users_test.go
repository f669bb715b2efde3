package users

import (
	"context"
	"errors"
	"testing"

	"billingpro/internal/domain"
	"billingpro/internal/store"
	"billingpro/internal/store/memkv"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(store.New(memkv.New()).Users)
}

func TestCreateAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	created, err := m.Create(ctx, " Admin ", "secret", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Username != "admin" {
		t.Fatalf("username = %q, want normalized %q", created.Username, "admin")
	}

	user, err := m.Authenticate(ctx, "admin", "secret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if user.Role != domain.RoleAdmin {
		t.Fatalf("role = %q, want admin", user.Role)
	}

	if _, err := m.Authenticate(ctx, "admin", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if _, err := m.Authenticate(ctx, "ghost", "secret"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("unknown user should look like bad credentials, got %v", err)
	}
}

func TestDuplicateUsernameRejected(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	if _, err := m.Create(ctx, "sari", "secret", domain.RoleSalesman); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := m.Create(ctx, "SARI", "other", domain.RoleSalesman)
	var dup *domain.DuplicateKeyError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateKeyError, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	if _, err := m.Create(ctx, "sari", "oldpass", domain.RoleSalesman); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.ChangePassword(ctx, "sari", "wrong", "newpass"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials, got %v", err)
	}
	if err := m.ChangePassword(ctx, "sari", "oldpass", "newpass"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := m.Authenticate(ctx, "sari", "newpass"); err != nil {
		t.Fatalf("Authenticate with new password: %v", err)
	}
}

func TestDeactivateBlocksLogin(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	if _, err := m.Create(ctx, "sari", "secret", domain.RoleSalesman); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := m.Deactivate(ctx, "sari"); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if _, err := m.Authenticate(ctx, "sari", "secret"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for inactive user, got %v", err)
	}
}

func TestListHidesHashes(t *testing.T) {
	ctx := context.Background()
	m := newManager(t)

	if err := m.EnsureDefaultAdmin(ctx, "secret"); err != nil {
		t.Fatalf("EnsureDefaultAdmin: %v", err)
	}
	// Seeding twice is a no-op.
	if err := m.EnsureDefaultAdmin(ctx, "other"); err != nil {
		t.Fatalf("EnsureDefaultAdmin again: %v", err)
	}

	accounts, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("len = %d, want 1", len(accounts))
	}
	if accounts[0].PasswordHash != "" {
		t.Fatal("password hash leaked from List")
	}
}
