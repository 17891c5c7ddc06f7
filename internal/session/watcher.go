package session

import (
	"context"
	"time"

	"storefront-session/internal/event"
)

const DefaultPollInterval = time.Second

// Watcher keeps a cache in agreement with the shared slot. It reacts
// immediately to bus notifications from sibling contexts and falls back to a
// periodic reconciliation poll. It never writes the slot itself.
type Watcher struct {
	cache    *Cache
	slot     Slot
	bus      event.Bus
	interval time.Duration
}

func NewWatcher(cache *Cache, slot Slot, bus event.Bus, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Watcher{cache: cache, slot: slot, bus: bus, interval: interval}
}

// Run blocks until ctx is done. Start it in its own goroutine per context.
func (w *Watcher) Run(ctx context.Context) {
	var events <-chan event.Event
	if w.bus != nil {
		ch, unsubscribe := w.bus.Subscribe()
		defer unsubscribe()
		events = ch
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.reconcile(ctx)
		case e, ok := <-events:
			if !ok {
				return
			}
			if e.Type == event.TypeSessionUpdated || e.Type == event.TypeSessionCleared {
				w.reconcile(ctx)
			}
		}
	}
}

// reconcile re-runs cache initialization when the slot no longer matches the
// cache's token. A context whose own write caused the notification sees a
// matching token and does nothing.
func (w *Watcher) reconcile(ctx context.Context) {
	tok, err := w.slot.Read(ctx)
	if err != nil {
		return
	}

	if tok != w.cache.Token() {
		_ = w.cache.Initialize(ctx)
	}
}
