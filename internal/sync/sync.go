package sync

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/groblegark/fieldscript/internal/store"
)

// Destination is the interface for a snapshot target (S3, etc.).
type Destination interface {
	// Write sends the JSONL payload to the destination.
	Write(ctx context.Context, data []byte) error
}

// Scheduler runs periodic snapshot exports to one or more destinations.
type Scheduler struct {
	store        store.Store
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports from the store to the given
// destinations at the specified interval.
func NewScheduler(s store.Store, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:        s,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// Start begins periodic export. It runs an initial export immediately, then
// on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current export (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	// Run once immediately at startup.
	s.exportOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.exportOnce(ctx)
		}
	}
}

func (s *Scheduler) exportOnce(ctx context.Context) {
	var buf bytes.Buffer
	if err := ExportJSONL(ctx, s.store, &buf); err != nil {
		s.logger.Error("snapshot export failed", "err", err)
		return
	}
	data := buf.Bytes()

	for i, dest := range s.destinations {
		if err := dest.Write(ctx, data); err != nil {
			s.logger.Error("snapshot destination write failed", "destination", fmt.Sprintf("%d", i), "err", err)
		}
	}

	s.logger.Info("snapshot export completed", "destinations", len(s.destinations), "bytes", len(data))
}
