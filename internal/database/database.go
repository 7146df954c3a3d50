// Package database owns the PostgreSQL connection pool. The pool is
// constructed once at startup and handed to repositories by reference;
// there is no lazy or package-global client.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/blix057/afdver-Bot/internal/config"
	"github.com/blix057/afdver-Bot/internal/logger"
)

// pingTimeout bounds the startup connection check.
const pingTimeout = 5 * time.Second

// DB wraps the shared connection pool.
type DB struct {
	db     *sql.DB
	logger logger.Logger
}

// New opens the pool, applies the configured limits, and verifies the
// connection.
func New(cfg *config.Config, log logger.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	log.Info("Database connection established",
		logger.String("host", cfg.Database.Host),
		logger.Int("port", cfg.Database.Port),
		logger.String("dbname", cfg.Database.Database),
	)

	return &DB{
		db:     db,
		logger: log,
	}, nil
}

// DB returns the underlying pool.
func (d *DB) DB() *sql.DB {
	return d.db
}

// Close closes the pool.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// EnsureIndexes creates the query indexes on the links table if they are
// missing. Failures are logged and swallowed: index setup is best-effort
// at startup, never a per-request dependency. The unique url index backs
// the merge atomicity guarantee, so it is also schema-owned by the
// migrations; re-ensuring it here covers databases that predate them.
func (d *DB) EnsureIndexes(ctx context.Context, table string) {
	quoted := pq.QuoteIdentifier(table)
	stmts := []string{
		fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (url)",
			pq.QuoteIdentifier("idx_"+table+"_url"), quoted),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (tweet_id)",
			pq.QuoteIdentifier("idx_"+table+"_tweet_id"), quoted),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (created_at DESC)",
			pq.QuoteIdentifier("idx_"+table+"_created_at"), quoted),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (severity_score DESC)",
			pq.QuoteIdentifier("idx_"+table+"_severity_score"), quoted),
	}

	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			d.logger.Warn("Index setup failed",
				logger.String("statement", stmt),
				logger.Error(err),
			)
		}
	}
}
