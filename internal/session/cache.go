package session

import (
	"context"
	"sync"
	"time"

	"storefront-session/internal/event"
	"storefront-session/internal/model"
	"storefront-session/internal/service"
)

// Snapshot is the resolved view of the cache at one instant.
type Snapshot struct {
	User          *model.AuthUser
	Token         string
	Authenticated bool
	Loading       bool
}

// Cache is the process-wide session state for one context. It starts in the
// loading state and resolves once Initialize has verified (or found absent)
// the persisted token. Instances are injectable; there is no package-level
// singleton.
//
// Every mutation captures a monotonic epoch before its asynchronous work and
// commits only if no newer mutation has committed since, so a stale in-flight
// verify can never overwrite a fresher login or logout. The slot write/clear
// belonging to a mutation happens inside the same commit, keeping slot and
// cache in agreement.
type Cache struct {
	service    *service.SessionService
	slot       Slot
	bus        event.Bus
	sessionTTL time.Duration

	mu            sync.Mutex
	user          *model.AuthUser
	token         string
	authenticated bool
	loading       bool
	ready         chan struct{}
	nextEpoch     uint64
	appliedEpoch  uint64
}

func NewCache(svc *service.SessionService, slot Slot, bus event.Bus, sessionTTL time.Duration) *Cache {
	return &Cache{
		service:    svc,
		slot:       slot,
		bus:        bus,
		sessionTTL: sessionTTL,
		loading:    true,
		ready:      make(chan struct{}),
	}
}

// Initialize resolves the persisted slot into cache state: absent slot means
// logged out, a verifiable token populates the session, and any verification
// failure clears the slot and lands logged out.
func (c *Cache) Initialize(ctx context.Context) error {
	epoch := c.begin(true)

	tok, err := c.slot.Read(ctx)
	if err != nil || tok == "" {
		c.commit(epoch, nil, "", nil)
		return err
	}

	user, err := c.service.Verify(ctx, tok)
	if err != nil {
		// Fail safe to logged out: a bad slot value must not linger.
		cleared := c.commit(epoch, nil, "", func() error {
			_ = c.slot.Clear(ctx)
			return nil
		})
		if cleared {
			c.publish(event.TypeSessionCleared)
		}
		return nil
	}

	c.commit(epoch, &user, tok, nil)
	return nil
}

func (c *Cache) Login(ctx context.Context, email string, password string) (service.SessionResult, error) {
	epoch := c.begin(false)

	res, err := c.service.Login(ctx, email, password)
	if err != nil {
		// A failed attempt leaves the current session untouched.
		return service.SessionResult{}, err
	}

	user := res.User
	committed := c.commit(epoch, &user, res.Token, func() error {
		return c.slot.Write(ctx, res.Token, c.sessionTTL)
	})
	if committed {
		c.publish(event.TypeSessionUpdated)
	}
	return res, nil
}

func (c *Cache) Register(ctx context.Context, email string, password string, name string, phone string) (service.SessionResult, error) {
	epoch := c.begin(false)

	res, err := c.service.Register(ctx, email, password, name, phone)
	if err != nil {
		return service.SessionResult{}, err
	}

	user := res.User
	committed := c.commit(epoch, &user, res.Token, func() error {
		return c.slot.Write(ctx, res.Token, c.sessionTTL)
	})
	if committed {
		c.publish(event.TypeSessionUpdated)
	}
	return res, nil
}

// Logout clears the cache and the persisted slot unconditionally; a slot
// error does not keep the user logged in.
func (c *Cache) Logout(ctx context.Context) {
	epoch := c.begin(false)

	committed := c.commit(epoch, nil, "", func() error {
		_ = c.slot.Clear(ctx)
		return nil
	})
	if committed {
		c.publish(event.TypeSessionCleared)
	}
}

func (c *Cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Token:         c.token,
		Authenticated: c.authenticated,
		Loading:       c.loading,
	}
	if c.user != nil {
		u := *c.user
		snap.User = &u
	}
	return snap
}

func (c *Cache) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Ready returns a channel closed once the cache has left the loading state.
func (c *Cache) Ready() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

func (c *Cache) begin(markLoading bool) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextEpoch++
	if markLoading && !c.loading {
		c.loading = true
		c.ready = make(chan struct{})
	}
	return c.nextEpoch
}

// commit applies a mutation unless a newer one already committed. slotOp, if
// given, runs under the same lock so the slot cannot diverge from the cache
// mid-commit. A slotOp error aborts the commit.
func (c *Cache) commit(epoch uint64, user *model.AuthUser, token string, slotOp func() error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch < c.appliedEpoch {
		return false
	}
	if slotOp != nil {
		if err := slotOp(); err != nil {
			return false
		}
	}
	c.appliedEpoch = epoch

	c.user = user
	c.token = token
	c.authenticated = user != nil
	if c.loading {
		c.loading = false
		close(c.ready)
	}
	return true
}

func (c *Cache) publish(t event.Type) {
	if c.bus != nil {
		c.bus.Publish(event.New(t, map[string]string{"slot": SlotName}))
	}
}
