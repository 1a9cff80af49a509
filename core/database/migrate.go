package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/infobot/core/logger"
	"github.com/m3rciful/infobot/migrations"
)

const previewFiles = 6

// RunMigrations applies pending up migrations over one connection borrowed
// from db. Files come from cfg.MigrationsDir when set and from the schema
// embedded in the binary otherwise.
func RunMigrations(ctx context.Context, db *sqlx.DB, cfg Config) error {
	fsys, origin, err := migrationFS(cfg.MigrationsDir)
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}
	files, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	logger.Debug(ctx, "db.migrate", "resolve",
		slog.String("path", origin),
		slog.Int("files_total", len(files)),
		logger.Strings("files", files, previewFiles),
	)

	src, err := iofs.New(fsys, ".")
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}
	conn, err := db.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("migrations connection: %w", err)
	}
	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{})
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("migrations driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn(ctx, "db.migrate", "close",
				slog.String("status", "fail"),
				slog.String("err", errors.Join(srcErr, dbErr).Error()),
			)
		}
	}()

	from := currentVersion(m)
	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error(ctx, "db.migrate", "apply",
			slog.String("status", "fail"),
			slog.Uint64("from_ver", from),
			slog.Duration("duration", time.Since(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("migration execution failed: %w", err)
	}
	to := currentVersion(m)

	applied := appliedBetween(files, from, to)
	if len(applied) > 0 {
		logger.Debug(ctx, "db.migrate", "apply",
			slog.Int("files_total", len(applied)),
			logger.Strings("files", applied, previewFiles),
		)
	}
	logger.Info(ctx, "db.migrate", "summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", from),
		slog.Uint64("to_ver", to),
		slog.Int("files", len(applied)),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

// migrationFS picks the directory named by dir, resolved against the working
// directory, or the embedded schema when dir is blank.
func migrationFS(dir string) (fs.FS, string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return migrations.FS, "embedded", nil
	}
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, "", err
		}
		dir = filepath.Join(cwd, dir)
	}
	return os.DirFS(dir), dir, nil
}

func currentVersion(m *migrate.Migrate) uint64 {
	v, _, err := m.Version()
	if err != nil {
		return 0
	}
	return uint64(v)
}

// appliedBetween returns the files whose version is in (from, to].
func appliedBetween(files []string, from, to uint64) []string {
	var out []string
	for _, f := range files {
		prefix, _, _ := strings.Cut(f, "_")
		v, err := strconv.ParseUint(prefix, 10, 64)
		if err == nil && v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
