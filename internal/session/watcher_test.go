package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within", timeout)
}

// Two caches sharing one slot model two open tabs. A logout in context A must
// flip context B to unauthenticated within one poll interval, without B doing
// anything itself.
func TestWatcher_LogoutPropagatesAcrossContexts(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.register(t, "a@b.com", "secret1")

	contextA := f.newCache()
	contextB := f.newCache()
	require.NoError(t, contextA.Initialize(ctx))

	_, err := contextA.Login(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	// B picks the session up from the shared slot.
	require.NoError(t, contextB.Initialize(ctx))
	require.True(t, contextB.Snapshot().Authenticated)

	go NewWatcher(contextB, f.slot, f.bus, 50*time.Millisecond).Run(ctx)

	contextA.Logout(ctx)

	eventually(t, time.Second, func() bool {
		snap := contextB.Snapshot()
		return !snap.Authenticated && !snap.Loading
	})
}

func TestWatcher_LoginPropagatesAcrossContexts(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.register(t, "a@b.com", "secret1")

	contextA := f.newCache()
	contextB := f.newCache()
	require.NoError(t, contextA.Initialize(ctx))
	require.NoError(t, contextB.Initialize(ctx))
	require.False(t, contextB.Snapshot().Authenticated)

	go NewWatcher(contextB, f.slot, f.bus, 50*time.Millisecond).Run(ctx)

	res, err := contextA.Login(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	eventually(t, time.Second, func() bool {
		snap := contextB.Snapshot()
		return snap.Authenticated && snap.Token == res.Token
	})
}

// Without bus notifications the periodic poll alone must still reconcile.
func TestWatcher_PollOnlyFallback(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.register(t, "a@b.com", "secret1")

	contextA := f.newCache()
	contextB := f.newCache()
	require.NoError(t, contextA.Initialize(ctx))
	require.NoError(t, contextB.Initialize(ctx))

	go NewWatcher(contextB, f.slot, nil, 50*time.Millisecond).Run(ctx)

	_, err := contextA.Login(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	eventually(t, time.Second, func() bool {
		return contextB.Snapshot().Authenticated
	})
}

func TestWatcher_MatchingSlotIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, "a@b.com", "secret1")

	cache := f.newCache()
	require.NoError(t, cache.Initialize(ctx))
	_, err := cache.Login(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	before := cache.Snapshot()

	w := NewWatcher(cache, f.slot, f.bus, time.Minute)
	w.reconcile(ctx)

	assert.Equal(t, before, cache.Snapshot())
}
