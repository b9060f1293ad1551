package scriptcache

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/groblegark/fieldscript/internal/events"
	"github.com/groblegark/fieldscript/internal/model"
)

// fakeSubscriber delivers payloads on in-process channels, one per topic.
type fakeSubscriber struct {
	mu    sync.Mutex
	chans map[string]chan []byte
	onces map[string]*sync.Once
}

func newFakeSubscriber() *fakeSubscriber {
	return &fakeSubscriber{
		chans: make(map[string]chan []byte),
		onces: make(map[string]*sync.Once),
	}
}

func (s *fakeSubscriber) Subscribe(topic string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan []byte, 16)
	once := &sync.Once{}
	s.chans[topic] = ch
	s.onces[topic] = once
	cancel := func() { once.Do(func() { close(ch) }) }
	return ch, cancel, nil
}

func (s *fakeSubscriber) Close() error { return nil }

func (s *fakeSubscriber) deliver(t *testing.T, topic string, event any) {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s.mu.Lock()
	ch, ok := s.chans[topic]
	s.mu.Unlock()
	if !ok {
		t.Fatalf("no subscription for %s", topic)
	}
	ch <- data
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReplicatorAppliesRemoteInvalidation(t *testing.T) {
	finder := &countingFinder{}
	finder.set(&model.FieldConfig{ID: 42, Version: "v1", ScriptBody: "return 1", Cacheable: true})
	c := newTestCache(t, finder, &events.NoopPublisher{})

	ctx := context.Background()
	if _, err := c.GetScript(ctx, 42); err != nil {
		t.Fatalf("warming cache: %v", err)
	}

	sub := newFakeSubscriber()
	rep := NewReplicator(c, sub, discardLogger())
	if err := rep.Start(); err != nil {
		t.Fatalf("starting replicator: %v", err)
	}

	sub.deliver(t, events.TopicConfigInvalidated, events.ConfigInvalidated{
		ConfigID: 42,
		Origin:   "some-other-process",
	})
	// Stop drains the pending message before the apply loop exits.
	rep.Stop()

	if _, err := c.GetScript(ctx, 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := finder.calls.Load(); n != 2 {
		t.Errorf("store hit %d times, want 2 (remote invalidation must drop the key)", n)
	}
}

func TestReplicatorSkipsOwnOrigin(t *testing.T) {
	finder := &countingFinder{}
	finder.set(&model.FieldConfig{ID: 42, Version: "v1", ScriptBody: "return 1", Cacheable: true})
	c := newTestCache(t, finder, &events.NoopPublisher{})

	ctx := context.Background()
	if _, err := c.GetScript(ctx, 42); err != nil {
		t.Fatalf("warming cache: %v", err)
	}

	sub := newFakeSubscriber()
	rep := NewReplicator(c, sub, discardLogger())
	if err := rep.Start(); err != nil {
		t.Fatalf("starting replicator: %v", err)
	}

	sub.deliver(t, events.TopicConfigInvalidated, events.ConfigInvalidated{
		ConfigID: 42,
		Origin:   c.Origin(),
	})
	rep.Stop()

	if _, err := c.GetScript(ctx, 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := finder.calls.Load(); n != 1 {
		t.Errorf("store hit %d times, want 1 (own broadcasts were already applied locally)", n)
	}
}

func TestReplicatorAppliesRemoteClear(t *testing.T) {
	finder := &countingFinder{}
	finder.set(&model.FieldConfig{ID: 1, Version: "v1", ScriptBody: "a", Cacheable: true})
	finder.set(&model.FieldConfig{ID: 2, Version: "v1", ScriptBody: "b", Cacheable: true})
	c := newTestCache(t, finder, &events.NoopPublisher{})

	ctx := context.Background()
	c.GetScript(ctx, 1) //nolint:errcheck
	c.GetScript(ctx, 2) //nolint:errcheck

	sub := newFakeSubscriber()
	rep := NewReplicator(c, sub, discardLogger())
	if err := rep.Start(); err != nil {
		t.Fatalf("starting replicator: %v", err)
	}

	sub.deliver(t, events.TopicCacheCleared, events.CacheCleared{Origin: "some-other-process"})
	rep.Stop()

	c.GetScript(ctx, 1) //nolint:errcheck
	c.GetScript(ctx, 2) //nolint:errcheck
	if n := finder.calls.Load(); n != 4 {
		t.Errorf("store hit %d times, want 4 (remote clear must drop every key)", n)
	}
}

func TestReplicatorIgnoresBadPayload(t *testing.T) {
	finder := &countingFinder{}
	c := newTestCache(t, finder, &events.NoopPublisher{})

	sub := newFakeSubscriber()
	rep := NewReplicator(c, sub, discardLogger())
	if err := rep.Start(); err != nil {
		t.Fatalf("starting replicator: %v", err)
	}

	sub.mu.Lock()
	ch := sub.chans[events.TopicConfigInvalidated]
	sub.mu.Unlock()
	ch <- []byte("not json")

	// Must not panic; loop keeps running and Stop returns.
	rep.Stop()
}
