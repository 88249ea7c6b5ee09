package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver "pgx"
	_ "modernc.org/sqlite"             // database/sql driver "sqlite"

	"github.com/apphelix/engagement-tracker/internal/common"
)

// Open connects a database/sql handle for the configured driver. Postgres is
// the production path; sqlite serves local and test runs.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	driverName, err := sqlDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}
	logger.Info("connecting to database", "driver", cfg.Driver)

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, err
	}

	if cfg.Driver == "sqlite" {
		// modernc sqlite handles are not safe for concurrent writers.
		db.SetMaxOpenConns(1)
	} else if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
		db.SetConnMaxLifetime(cfg.MaxConnLifetime)
		db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)
	}

	pingCtx := ctx
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("database ping failed", "error", err)
		_ = db.Close()
		return nil, err
	}

	logger.Info("successfully connected to database")
	return db, nil
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "pgx", nil
	case "sqlite":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}
