package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySlot(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()

	tok, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, slot.Write(ctx, "abc", time.Hour))
	tok, err = slot.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, slot.Clear(ctx))
	tok, err = slot.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestMemorySlot_TTL(t *testing.T) {
	ctx := context.Background()
	slot := NewMemorySlot()

	require.NoError(t, slot.Write(ctx, "abc", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	tok, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok, "expired slot reads as absent")
}

func TestFileSlot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "auth_token.json")

	slot, err := NewFileSlot(path)
	require.NoError(t, err)

	tok, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, slot.Write(ctx, "abc", time.Hour))

	// A second instance over the same path sees the value: the slot is the
	// durable thing, not the struct.
	again, err := NewFileSlot(path)
	require.NoError(t, err)
	tok, err = again.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, slot.Clear(ctx))
	tok, err = again.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	// Clearing an already-clear slot is fine.
	require.NoError(t, slot.Clear(ctx))
}

func TestFileSlot_CorruptFileReadsAbsent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "auth_token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	slot, err := NewFileSlot(path)
	require.NoError(t, err)

	tok, err := slot.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}
