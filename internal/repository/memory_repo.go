package repository

import (
	"context"
	"strings"
	"sync"

	"storefront-session/internal/model"
)

// MemoryRepository is the mock collection store: a mutex-guarded map keyed by
// id with an email index. Used when no database is configured and in tests.
type MemoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]model.User
	byEmail map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:    map[string]model.User{},
		byEmail: map[string]string{},
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return u, nil
}

func (r *MemoryRepository) Create(ctx context.Context, u model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := emailKey(u.Email)
	if _, exists := r.byEmail[key]; exists {
		return model.ErrDuplicateEmail
	}

	r.byID[u.ID] = u
	r.byEmail[key] = u.ID
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, patch model.UserPatch) (model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}

	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Phone != nil {
		u.Phone = *patch.Phone
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	if patch.LastLoginAt != nil {
		t := *patch.LastLoginAt
		u.LastLoginAt = &t
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}
	if patch.ClearResetToken {
		u.ResetToken = ""
		u.ResetTokenExpiry = nil
	} else {
		if patch.ResetToken != nil {
			u.ResetToken = *patch.ResetToken
		}
		if patch.ResetTokenExpiry != nil {
			t := *patch.ResetTokenExpiry
			u.ResetTokenExpiry = &t
		}
	}

	r.byID[id] = u
	return u, nil
}
