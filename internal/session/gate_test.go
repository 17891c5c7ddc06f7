package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-session/internal/model"
)

func TestGate_SuspendsWhileLoading(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@b.com", "secret1")

	cache := f.newCache()
	gate := NewGate(cache)

	// Resolve the cache only after the gate has started waiting.
	go func() {
		time.Sleep(50 * time.Millisecond)
		_, _ = cache.Login(ctx, "a@b.com", "secret1")
	}()

	user, err := gate.Authorize(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)
}

func TestGate_LoadingBoundedByContext(t *testing.T) {
	f := newFixture(t)
	cache := f.newCache()
	gate := NewGate(cache)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := gate.Authorize(ctx, "")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGate_Unauthorized(t *testing.T) {
	f := newFixture(t)
	cache := f.newCache()
	require.NoError(t, cache.Initialize(context.Background()))

	_, err := NewGate(cache).Authorize(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestGate_RoleCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "a@b.com", "secret1")

	cache := f.newCache()
	require.NoError(t, cache.Initialize(ctx))
	_, err := cache.Login(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	gate := NewGate(cache)

	user, err := gate.Authorize(ctx, model.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, user.Role)

	_, err = gate.Authorize(ctx, model.RoleAdmin)
	assert.ErrorIs(t, err, model.ErrForbidden)
}
