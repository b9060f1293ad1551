package scriptcache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/groblegark/fieldscript/internal/events"
)

// Replicator applies remote invalidation broadcasts to the local cache.
// Broadcasts from this process's own origin are skipped; the local drop
// already happened before the broadcast was published.
type Replicator struct {
	cache  *Cache
	sub    events.Subscriber
	logger *slog.Logger

	cancels []func()
	wg      sync.WaitGroup
}

// NewReplicator returns a Replicator that keeps cache in sync with remote
// invalidations delivered by sub.
func NewReplicator(cache *Cache, sub events.Subscriber, logger *slog.Logger) *Replicator {
	return &Replicator{cache: cache, sub: sub, logger: logger}
}

// Start subscribes to the invalidation topics and begins applying remote
// drops in the background.
func (r *Replicator) Start() error {
	invalidated, cancelInv, err := r.sub.Subscribe(events.TopicConfigInvalidated)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", events.TopicConfigInvalidated, err)
	}
	cleared, cancelClr, err := r.sub.Subscribe(events.TopicCacheCleared)
	if err != nil {
		cancelInv()
		return fmt.Errorf("subscribe %s: %w", events.TopicCacheCleared, err)
	}
	r.cancels = []func(){cancelInv, cancelClr}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(invalidated, cleared)
	}()
	return nil
}

// Stop unsubscribes and waits for the apply loop to finish.
func (r *Replicator) Stop() {
	for _, cancel := range r.cancels {
		cancel()
	}
	r.wg.Wait()
}

func (r *Replicator) run(invalidated, cleared <-chan []byte) {
	for invalidated != nil || cleared != nil {
		select {
		case data, ok := <-invalidated:
			if !ok {
				invalidated = nil
				continue
			}
			r.applyInvalidated(data)
		case data, ok := <-cleared:
			if !ok {
				cleared = nil
				continue
			}
			r.applyCleared(data)
		}
	}
}

func (r *Replicator) applyInvalidated(data []byte) {
	var msg events.ConfigInvalidated
	if err := json.Unmarshal(data, &msg); err != nil {
		r.logger.Warn("bad invalidation payload", "err", err)
		return
	}
	if msg.Origin == r.cache.Origin() {
		return
	}
	r.cache.drop(msg.ConfigID)
	r.logger.Debug("applied remote invalidation", "config_id", msg.ConfigID, "origin", msg.Origin)
}

func (r *Replicator) applyCleared(data []byte) {
	var msg events.CacheCleared
	if err := json.Unmarshal(data, &msg); err != nil {
		r.logger.Warn("bad cache-clear payload", "err", err)
		return
	}
	if msg.Origin == r.cache.Origin() {
		return
	}
	r.cache.dropAll()
	r.logger.Debug("applied remote cache clear", "origin", msg.Origin)
}
