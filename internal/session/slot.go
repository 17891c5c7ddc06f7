// Package session holds the process-wide session state: the cache, the
// persisted token slot it is backed by, the watcher that reconciles sibling
// contexts and the gate that guards protected operations.
package session

import (
	"context"
	"sync"
	"time"
)

// SlotName is the key the persisted token lives under, in every backend.
const SlotName = "auth_token"

// Slot is the single durable value shared by all contexts. Only the cache
// writes it; everything else reads.
type Slot interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, token string, ttl time.Duration) error
	Clear(ctx context.Context) error
}

// MemorySlot is a shared in-process slot. Several caches pointed at one
// MemorySlot model several tabs sharing one cookie.
type MemorySlot struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Read(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" || (!s.expiresAt.IsZero() && time.Now().After(s.expiresAt)) {
		return "", nil
	}
	return s.token, nil
}

func (s *MemorySlot) Write(ctx context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	if ttl > 0 {
		s.expiresAt = time.Now().Add(ttl)
	} else {
		s.expiresAt = time.Time{}
	}
	return nil
}

func (s *MemorySlot) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.expiresAt = time.Time{}
	return nil
}
