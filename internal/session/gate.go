package session

import (
	"context"

	"storefront-session/internal/model"
)

// Gate guards protected operations using cache state. While the cache is
// still loading the decision is suspended, bounded by the caller's context;
// loading is never treated as unauthenticated.
type Gate struct {
	cache *Cache
}

func NewGate(cache *Cache) *Gate {
	return &Gate{cache: cache}
}

// Authorize waits for the cache to resolve, then requires an authenticated
// session and, when requiredRole is non-empty, a matching role.
func (g *Gate) Authorize(ctx context.Context, requiredRole string) (*model.AuthUser, error) {
	select {
	case <-g.cache.Ready():
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	snap := g.cache.Snapshot()
	if !snap.Authenticated || snap.User == nil {
		return nil, model.ErrUnauthorized
	}

	if requiredRole != "" && snap.User.Role != requiredRole {
		return nil, model.ErrForbidden
	}

	return snap.User, nil
}
