package store

import (
	"context"
	"fmt"
	"strings"

	"billingpro/internal/domain"
)

type UserRepository struct {
	kv KV
}

func (r *UserRepository) List(ctx context.Context) ([]domain.UserAccount, error) {
	return loadList[domain.UserAccount](ctx, r.kv, keyUsers)
}

func (r *UserRepository) Get(ctx context.Context, username string) (domain.UserAccount, error) {
	items, err := r.List(ctx)
	if err != nil {
		return domain.UserAccount{}, err
	}
	for _, u := range items {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return domain.UserAccount{}, fmt.Errorf("user %s: %w", username, domain.ErrNotFound)
}

func (r *UserRepository) Create(ctx context.Context, user domain.UserAccount) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	for _, u := range items {
		if strings.EqualFold(u.Username, user.Username) {
			return &domain.DuplicateKeyError{Field: "username", Value: user.Username}
		}
	}
	items = append(items, user)
	return saveList(ctx, r.kv, keyUsers, items)
}

func (r *UserRepository) Update(ctx context.Context, user domain.UserAccount) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i, u := range items {
		if strings.EqualFold(u.Username, user.Username) {
			items[i] = user
			return saveList(ctx, r.kv, keyUsers, items)
		}
	}
	return fmt.Errorf("user %s: %w", user.Username, domain.ErrNotFound)
}

func (r *UserRepository) ReplaceAll(ctx context.Context, items []domain.UserAccount) error {
	return saveList(ctx, r.kv, keyUsers, items)
}
