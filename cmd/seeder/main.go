package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"github.com/samirrijal/devcamper/internal/adapters/geocoder"
	"github.com/samirrijal/devcamper/internal/adapters/postgres"
	"github.com/samirrijal/devcamper/internal/core/ports"
	"github.com/samirrijal/devcamper/internal/core/usecases"
	"github.com/samirrijal/devcamper/internal/pkg/config"
	"github.com/samirrijal/devcamper/internal/pkg/logging"
)

func main() {
	doImport := flag.Bool("import", false, "load bootcamps.json and courses.json")
	doDestroy := flag.Bool("destroy", false, "delete every bootcamp and course")
	dataDir := flag.String("data", "data", "directory holding the seed files")
	flag.Parse()

	if *doImport == *doDestroy {
		log.Fatal("usage: seeder -import|-destroy [-data dir]")
	}

	cfg, err := config.Load("devcamper-seeder")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	if *doDestroy {
		tag, err := db.Pool.Exec(ctx, `DELETE FROM bootcamps`)
		if err != nil {
			log.Fatalf("destroy: %v", err)
		}
		slog.Info("data destroyed", "bootcamps", tag.RowsAffected())
		return
	}

	data, err := loadSeed(*dataDir)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}

	var geo ports.Geocoder
	if gc, err := geocoder.New(cfg.Geocoder); err != nil {
		slog.Warn("geocoder unavailable, bootcamps are imported without a location", "error", err)
	} else {
		geo = gc
	}

	bootcampRepo := postgres.NewBootcampRepo(db)
	courseRepo := postgres.NewCourseRepo(db)
	bootcamps := usecases.NewBootcampService(bootcampRepo, courseRepo, geo, nil)
	courses := usecases.NewCourseService(courseRepo, bootcampRepo, nil)

	if err := importSeed(ctx, data, bootcamps, courses); err != nil {
		log.Fatalf("import: %v", err)
	}
}
