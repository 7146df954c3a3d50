package bootstrap

import (
	"context"
	"fmt"

	"github.com/blix057/afdver-Bot/internal/config"
	"github.com/blix057/afdver-Bot/internal/database"
	"github.com/blix057/afdver-Bot/internal/logger"
)

// SetupDatabase opens the connection pool and runs the best-effort secondary
// index pass. Index failures are logged inside EnsureIndexes and do not stop
// startup; the unique url index is owned by migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, log logger.Logger) (*database.DB, error) {
	db, err := database.New(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("database connection: %w", err)
	}

	db.EnsureIndexes(ctx, cfg.Database.LinksTable)
	return db, nil
}
