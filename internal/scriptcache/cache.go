// Package scriptcache provides the replicated read-through cache mapping
// configuration identity to its resolved script. Replication is by
// invalidation broadcast, not value propagation: a local invalidation is
// published so every cooperating process drops the same key. Reads never
// touch the bus; they only consult the local cache and backing store.
package scriptcache

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	"github.com/groblegark/fieldscript/internal/events"
	"github.com/groblegark/fieldscript/internal/model"
	"github.com/groblegark/fieldscript/internal/stamp"
)

// Finder is the slice of the store the cache reads through to.
type Finder interface {
	FindFieldConfig(ctx context.Context, id int64) (*model.FieldConfig, error)
}

// entry is the cached value: a resolved script or the load failure.
// Failures are evicted on read so the next call retries the store.
type entry struct {
	script model.FieldScript
	err    error
}

// Cache is the local script cache for one process.
type Cache struct {
	finder Finder
	pub    events.Publisher
	items  *ttlcache.Cache[int64, entry]
	group  *singleflight.Group
	origin string
}

// New creates a Cache. ttl of 0 means entries never expire and are dropped
// only by invalidation. The publisher carries invalidation broadcasts;
// pass events.NoopPublisher for a single-process deployment.
func New(finder Finder, pub events.Publisher, ttl time.Duration) (*Cache, error) {
	origin, err := stamp.New()
	if err != nil {
		return nil, fmt.Errorf("generate cache origin: %w", err)
	}

	items := ttlcache.New(
		ttlcache.WithTTL[int64, entry](ttl),
		ttlcache.WithDisableTouchOnHit[int64, entry](),
	)
	go items.Start()

	return &Cache{
		finder: finder,
		pub:    pub,
		items:  items,
		group:  &singleflight.Group{},
		origin: origin,
	}, nil
}

// Origin identifies this process on the invalidation bus so it can ignore
// its own broadcasts.
func (c *Cache) Origin() string { return c.origin }

// Stop halts the cache's expiration goroutine.
func (c *Cache) Stop() { c.items.Stop() }

// GetScript resolves the script for a config ID, computing and caching it
// on miss. A config with no backing record resolves to the default script,
// never an error. Concurrent misses for the same key trigger at most one
// store lookup; all callers observe the same value or the same failure.
func (c *Cache) GetScript(ctx context.Context, id int64) (model.FieldScript, error) {
	loader := ttlcache.LoaderFunc[int64, entry](
		func(items *ttlcache.Cache[int64, entry], key int64) *ttlcache.Item[int64, entry] {
			return items.Set(key, c.load(ctx, key), ttlcache.DefaultTTL)
		},
	)

	item := c.items.Get(id, ttlcache.WithLoader[int64, entry](
		ttlcache.NewSuppressedLoader(loader, c.group),
	))
	e := item.Value()
	if e.err != nil {
		// Don't retain failures; the next read retries the store.
		c.items.Delete(id)
		return model.FieldScript{}, e.err
	}
	return e.script, nil
}

func (c *Cache) load(ctx context.Context, id int64) entry {
	cfg, err := c.finder.FindFieldConfig(ctx, id)
	if err != nil {
		return entry{err: err}
	}
	if cfg == nil {
		return entry{script: model.DefaultFieldScript()}
	}
	return entry{script: model.FieldScript{
		Version:    cfg.Version,
		ScriptBody: cfg.ScriptBody,
		Cacheable:  cfg.Cacheable,
	}}
}

// Invalidate drops one key locally, then broadcasts so other processes drop
// it too. The local drop happens first: the writing process must observe
// its own write immediately, the rest of the cluster eventually.
func (c *Cache) Invalidate(ctx context.Context, id int64) error {
	c.items.Delete(id)
	return c.pub.Publish(ctx, events.TopicConfigInvalidated, events.ConfigInvalidated{
		ConfigID: id,
		Origin:   c.origin,
	})
}

// InvalidateAll clears every entry locally and broadcasts the clear.
func (c *Cache) InvalidateAll(ctx context.Context) error {
	c.items.DeleteAll()
	return c.pub.Publish(ctx, events.TopicCacheCleared, events.CacheCleared{
		Origin: c.origin,
	})
}

// drop removes a key without broadcasting. Used by the replicator when
// applying a remote invalidation.
func (c *Cache) drop(id int64) { c.items.Delete(id) }

// dropAll clears the cache without broadcasting.
func (c *Cache) dropAll() { c.items.DeleteAll() }
