package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileSlot persists the token as a small JSON file, surviving process
// restarts the way a cookie survives page loads.
type FileSlot struct {
	path string
	mu   sync.Mutex
}

type fileSlotRecord struct {
	Name      string     `json:"name"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func NewFileSlot(path string) (*FileSlot, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return &FileSlot{path: path}, nil
}

func (s *FileSlot) Read(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	var rec fileSlotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// A corrupt slot reads as absent; the cache treats that as logged out.
		return "", nil
	}

	if rec.ExpiresAt != nil && time.Now().After(*rec.ExpiresAt) {
		return "", nil
	}
	return rec.Token, nil
}

func (s *FileSlot) Write(ctx context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := fileSlotRecord{Name: SlotName, Token: token}
	if ttl > 0 {
		t := time.Now().Add(ttl)
		rec.ExpiresAt = &t
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileSlot) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
