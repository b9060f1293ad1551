package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/groblegark/fieldscript/internal/events"
)

// BusRecorder publishes audit entries to the event bus for the host's audit
// pipeline to consume.
type BusRecorder struct {
	pub events.Publisher
}

// Compile-time check that BusRecorder implements Recorder.
var _ Recorder = (*BusRecorder)(nil)

func NewBusRecorder(pub events.Publisher) *BusRecorder {
	return &BusRecorder{pub: pub}
}

func (r *BusRecorder) Record(ctx context.Context, entry Entry) error {
	return r.pub.Publish(ctx, events.TopicAuditEntry, entry)
}

// LogRecorder writes audit entries to the structured log. Used when no
// event bus is configured.
type LogRecorder struct {
	logger *slog.Logger
}

var _ Recorder = (*LogRecorder)(nil)

func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(_ context.Context, entry Entry) error {
	r.logger.Info("audit",
		"actor", entry.Actor,
		"category", string(entry.Category),
		"action", string(entry.Action),
		"subject", entry.Subject,
	)
	return nil
}

// Memory retains entries in memory. Intended for tests and local runs.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

var _ Recorder = (*Memory)(nil)

func (m *Memory) Record(_ context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// Entries returns a copy of everything recorded so far.
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
