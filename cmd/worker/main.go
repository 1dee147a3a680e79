package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/devcamper/internal/adapters/geocoder"
	natsadapter "github.com/samirrijal/devcamper/internal/adapters/nats"
	"github.com/samirrijal/devcamper/internal/adapters/postgres"
	"github.com/samirrijal/devcamper/internal/adapters/valkey"
	"github.com/samirrijal/devcamper/internal/core/ports"
	"github.com/samirrijal/devcamper/internal/core/usecases"
	"github.com/samirrijal/devcamper/internal/pkg/config"
	"github.com/samirrijal/devcamper/internal/pkg/logging"
	"github.com/samirrijal/devcamper/internal/workflows"
)

// The worker runs the re-geocode workflow and evicts cached bootcamps on
// directory events.
func main() {
	cfg, err := config.Load("devcamper-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	gc, err := geocoder.New(cfg.Geocoder)
	if err != nil {
		log.Fatalf("geocoder: %v", err)
	}

	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr, "devcamper:"); err != nil {
		slog.Warn("valkey unavailable, caching disabled", "error", err)
	} else {
		defer vc.Close()
		cache = vc
	}

	bootcamps := usecases.NewBootcampService(postgres.NewBootcampRepo(db), postgres.NewCourseRepo(db), gc, cache)

	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats publisher unavailable", "error", err)
	} else {
		defer pub.Close()
		bootcamps.WithEvents(pub)
	}

	// Cache invalidation on directory events
	if cache != nil {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats subscriber unavailable, cache eviction disabled", "error", err)
		} else {
			defer sub.Close()
			err := sub.SubscribeDirectoryEvents(ctx, natsadapter.SubjectWildcard, "cache-invalidator", bootcamps.Evict)
			if err != nil {
				log.Fatalf("subscribe: %v", err)
			}
			slog.Info("cache invalidator subscribed", "subject", natsadapter.SubjectWildcard)
		}
	}

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.GeocodeBootcampWorkflow)
	w.RegisterActivity(&workflows.GeocodeActivities{Bootcamps: bootcamps})

	slog.Info("geocode worker started", "task_queue", cfg.Temporal.TaskQueue, "provider", gc.Provider())
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
