// Package users manages the local accounts that stamp invoices with
// created_by. Passwords are bcrypt-hashed; the hash never leaves the store.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"billingpro/internal/domain"
)

// ErrBadCredentials covers both unknown usernames and wrong passwords so
// callers cannot discover which usernames exist.
var ErrBadCredentials = errors.New("invalid username or password")

type Repository interface {
	List(ctx context.Context) ([]domain.UserAccount, error)
	Get(ctx context.Context, username string) (domain.UserAccount, error)
	Create(ctx context.Context, user domain.UserAccount) error
	Update(ctx context.Context, user domain.UserAccount) error
}

type Manager struct {
	repo Repository
	now  func() time.Time
}

func NewManager(repo Repository) *Manager {
	return &Manager{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (m *Manager) Create(ctx context.Context, username, password, role string) (domain.UserAccount, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return domain.UserAccount{}, &domain.ValidationError{Field: "username", Reason: "required"}
	}
	if len(password) < 4 {
		return domain.UserAccount{}, &domain.ValidationError{Field: "password", Reason: "too short"}
	}
	if role != domain.RoleAdmin && role != domain.RoleSalesman {
		return domain.UserAccount{}, &domain.ValidationError{Field: "role", Reason: "must be admin or salesman"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserAccount{}, fmt.Errorf("hash password: %w", err)
	}
	user := domain.UserAccount{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		CreatedAt:    m.now(),
	}
	if err := m.repo.Create(ctx, user); err != nil {
		return domain.UserAccount{}, err
	}
	return user, nil
}

func (m *Manager) Authenticate(ctx context.Context, username, password string) (domain.UserAccount, error) {
	user, err := m.repo.Get(ctx, strings.TrimSpace(strings.ToLower(username)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.UserAccount{}, ErrBadCredentials
		}
		return domain.UserAccount{}, err
	}
	if !user.Active {
		return domain.UserAccount{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.UserAccount{}, ErrBadCredentials
	}
	return user, nil
}

func (m *Manager) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	user, err := m.Authenticate(ctx, username, oldPassword)
	if err != nil {
		return err
	}
	if len(newPassword) < 4 {
		return &domain.ValidationError{Field: "password", Reason: "too short"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return m.repo.Update(ctx, user)
}

func (m *Manager) Deactivate(ctx context.Context, username string) error {
	user, err := m.repo.Get(ctx, strings.TrimSpace(strings.ToLower(username)))
	if err != nil {
		return err
	}
	user.Active = false
	return m.repo.Update(ctx, user)
}

// List returns accounts with password hashes blanked.
func (m *Manager) List(ctx context.Context) ([]domain.UserAccount, error) {
	accounts, err := m.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		accounts[i].PasswordHash = ""
	}
	return accounts, nil
}

// EnsureDefaultAdmin seeds the admin account on an empty store.
func (m *Manager) EnsureDefaultAdmin(ctx context.Context, password string) error {
	_, err := m.repo.Get(ctx, domain.RoleAdmin)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	_, err = m.Create(ctx, domain.RoleAdmin, password, domain.RoleAdmin)
	return err
}
