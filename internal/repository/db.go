package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	_ "modernc.org/sqlite"             // sqlite driver

	"github.com/clearscan/doc-extractor/internal/common"
)

// Open connects the processing-job audit store. The driver is picked from the
// DSN: postgres:// (or postgresql://) uses pgx, anything else is treated as a
// sqlite path (":memory:" included).
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver, dsn := driverFor(cfg.DSN)
	logger.Info("connecting to audit store", "driver", driver)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, common.WrapError(err, "open database")
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "ping database")
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "migrate database")
	}
	return db, nil
}

func driverFor(dsn string) (driver, cleaned string) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx", dsn
	}
	return "sqlite", dsn
}

// migrate creates the processing_job table. Types are kept to the portable
// subset both drivers accept.
func migrate(ctx context.Context, db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS processing_job (
	id          TEXT PRIMARY KEY,
	doc_name    TEXT NOT NULL,
	format      TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	parsed_by   TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	text_bytes  BIGINT NOT NULL DEFAULT 0,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP
)`
	_, err := db.ExecContext(ctx, ddl)
	return err
}

// HealthCheck pings the store with its own deadline.
func HealthCheck(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return db.PingContext(ctx)
}
