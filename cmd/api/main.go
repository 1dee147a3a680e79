package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"

	"github.com/samirrijal/devcamper/internal/adapters/geocoder"
	"github.com/samirrijal/devcamper/internal/adapters/http"
	natsadapter "github.com/samirrijal/devcamper/internal/adapters/nats"
	"github.com/samirrijal/devcamper/internal/adapters/postgres"
	"github.com/samirrijal/devcamper/internal/adapters/temporal"
	"github.com/samirrijal/devcamper/internal/adapters/valkey"
	"github.com/samirrijal/devcamper/internal/core/ports"
	"github.com/samirrijal/devcamper/internal/core/usecases"
	"github.com/samirrijal/devcamper/internal/pkg/config"
	"github.com/samirrijal/devcamper/internal/pkg/logging"
	"github.com/samirrijal/devcamper/internal/pkg/metrics"
	"github.com/samirrijal/devcamper/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("devcamper-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	deps := &http.Dependencies{DB: db}

	// Cache
	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr, "devcamper:"); err != nil {
		slog.Warn("valkey unavailable, caching disabled", "error", err)
	} else {
		defer vc.Close()
		cache = vc
		deps.Cache = vc
	}

	// Geocoder
	var geo ports.Geocoder
	if gc, err := geocoder.New(cfg.Geocoder); err != nil {
		slog.Warn("geocoder unavailable, create and radius search will fail", "error", err)
	} else {
		geo = gc
		slog.Info("geocoder ready", "provider", gc.Provider())
	}

	// Repos
	bootcampRepo := postgres.NewBootcampRepo(db)
	courseRepo := postgres.NewCourseRepo(db)

	// Use cases
	bootcampSvc := usecases.NewBootcampService(bootcampRepo, courseRepo, geo, cache)
	courseSvc := usecases.NewCourseService(courseRepo, bootcampRepo, cache)

	// NATS
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable, directory events disabled", "error", err)
	} else {
		defer pub.Close()
		bootcampSvc.WithEvents(pub)
		courseSvc.WithEvents(pub)
		deps.NATS = pub.Conn()
	}

	// Temporal
	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    tlog.NewStructuredLogger(slog.Default()),
		})
		if err != nil {
			slog.Warn("temporal unavailable, re-geocoding runs inline", "error", err)
		} else {
			defer tc.Close()
			bootcampSvc.WithScheduler(temporal.NewScheduler(tc, cfg.Temporal.TaskQueue))
		}
	}

	deps.Bootcamps = bootcampSvc
	deps.Courses = courseSvc

	// Pool gauges
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.PoolStat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "DevCamper API",
		ErrorHandler: http.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
