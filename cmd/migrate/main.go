package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/samirrijal/devcamper/internal/pkg/config"
	"github.com/samirrijal/devcamper/internal/pkg/logging"
)

const migrationsDir = "migrations"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("devcamper-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, "text")

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		log.Fatalf("schema_migrations: %v", err)
	}

	switch os.Args[1] {
	case "up":
		err = up(ctx, pool)
	case "down":
		err = down(ctx, pool)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		log.Fatal(err)
	}
}

// upFiles lists forward migrations in name order. Files ending in .down.sql
// undo the migration with the same prefix.
func upFiles() ([]string, error) {
	all, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	if err != nil {
		return nil, err
	}
	var files []string
	for _, f := range all {
		if !strings.HasSuffix(f, ".down.sql") {
			files = append(files, f)
		}
	}
	slices.Sort(files)
	if len(files) == 0 {
		return nil, errors.New("no migrations found in " + migrationsDir)
	}
	return files, nil
}

func up(ctx context.Context, pool *pgxpool.Pool) error {
	files, err := upFiles()
	if err != nil {
		return err
	}

	for _, f := range files {
		name := filepath.Base(f)
		var applied bool
		if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&applied); err != nil {
			return fmt.Errorf("check %s: %w", name, err)
		}
		if applied {
			slog.Debug("skip", "migration", name)
			continue
		}

		if err := apply(ctx, pool, f, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
			return err
		}
		slog.Info("applied", "migration", name)
	}

	slog.Info("all migrations applied")
	return nil
}

// down reverts the most recently applied migration.
func down(ctx context.Context, pool *pgxpool.Pool) error {
	var name string
	err := pool.QueryRow(ctx, `SELECT name FROM schema_migrations ORDER BY name DESC LIMIT 1`).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		slog.Info("nothing to revert")
		return nil
	}
	if err != nil {
		return fmt.Errorf("last migration: %w", err)
	}

	f := filepath.Join(migrationsDir, strings.TrimSuffix(name, ".sql")+".down.sql")
	if err := apply(ctx, pool, f, `DELETE FROM schema_migrations WHERE name = $1`, name); err != nil {
		return err
	}
	slog.Info("reverted", "migration", name)
	return nil
}

// apply runs the file and the bookkeeping statement in one transaction.
func apply(ctx context.Context, pool *pgxpool.Pool, file, record, name string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("exec %s: %w", file, err)
		}
		if _, err := tx.Exec(ctx, record, name); err != nil {
			return fmt.Errorf("record %s: %w", name, err)
		}
		return nil
	})
}
