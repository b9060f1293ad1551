package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/groblegark/fieldscript/internal/audit"
	"github.com/groblegark/fieldscript/internal/catalog"
	"github.com/groblegark/fieldscript/internal/changelog"
	"github.com/groblegark/fieldscript/internal/config"
	"github.com/groblegark/fieldscript/internal/events"
	"github.com/groblegark/fieldscript/internal/parser"
	"github.com/groblegark/fieldscript/internal/scriptcache"
	"github.com/groblegark/fieldscript/internal/server"
	"github.com/groblegark/fieldscript/internal/service"
	"github.com/groblegark/fieldscript/internal/store/postgres"
	fssync "github.com/groblegark/fieldscript/internal/sync"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the fieldscript HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		slog.SetDefault(logger)

		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// Connect to Postgres.
		st, err := postgres.New(cfg.DatabaseURL)
		if err != nil {
			return err
		}

		// Load the field-configuration catalog.
		cat, err := catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			st.Close()
			return err
		}

		// Create event publisher/subscriber. Without NATS the cache is
		// local-only and audit entries go to the log.
		var (
			publisher  events.Publisher
			subscriber events.Subscriber
			auditRec   audit.Recorder
			notifier   events.Notifier
		)
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				st.Close()
				return err
			}
			sub, err := events.NewNATSSubscriber(cfg.NATSURL)
			if err != nil {
				pub.Close()
				st.Close()
				return err
			}
			publisher = pub
			subscriber = sub
			auditRec = audit.NewBusRecorder(pub)
			notifier = events.NewBusNotifier(pub)
			logger.Info("events enabled", "nats_url", cfg.NATSURL)
		} else {
			publisher = &events.NoopPublisher{}
			auditRec = audit.NewLogRecorder(logger)
			notifier = events.NoopNotifier{}
			logger.Info("events disabled (FIELDSCRIPT_NATS_URL not set); cache is local-only")
		}

		// Script cache and, when a bus is present, the invalidation replicator.
		cache, err := scriptcache.New(st, publisher, cfg.CacheTTL)
		if err != nil {
			publisher.Close()
			st.Close()
			return err
		}

		var replicator *scriptcache.Replicator
		if subscriber != nil {
			replicator = scriptcache.NewReplicator(cache, subscriber, logger)
			if err := replicator.Start(); err != nil {
				cache.Stop()
				publisher.Close()
				st.Close()
				return err
			}
		}

		svc := service.New(st, cat, parser.AcceptAll{}, cache, changelog.NewRecorder(st), auditRec, notifier)

		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: server.New(svc).NewHTTPHandler(cfg.AuthToken),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		// Start snapshot export if configured.
		var scheduler *fssync.Scheduler
		if cfg.SyncInterval > 0 && cfg.SyncS3Bucket != "" {
			dest, err := fssync.NewS3Destination(
				context.Background(),
				cfg.SyncS3Bucket,
				cfg.SyncS3Key,
				cfg.SyncS3Region,
				cfg.SyncS3Endpoint,
			)
			if err != nil {
				logger.Error("failed to create S3 snapshot destination", "err", err)
			} else {
				scheduler = fssync.NewScheduler(st, []fssync.Destination{dest}, cfg.SyncInterval, logger)
				scheduler.Start()
				logger.Info("snapshot export enabled", "bucket", cfg.SyncS3Bucket, "key", cfg.SyncS3Key, "interval", cfg.SyncInterval)
			}
		}

		// Wait for shutdown signal.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("shutting down", "signal", sig.String())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", "err", err)
		}

		if scheduler != nil {
			scheduler.Stop()
		}
		if replicator != nil {
			replicator.Stop()
		}
		cache.Stop()
		if subscriber != nil {
			subscriber.Close()
		}
		publisher.Close()
		st.Close()
		return nil
	},
}
