package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vinnesia/domainform-backend/config"
	"github.com/vinnesia/domainform-backend/internal/db"
	"github.com/vinnesia/domainform-backend/internal/storage/postgres"
)

// Stores holds both PostgreSQL handles: the pgx pool for submissions and
// the database/sql handle for applicants.
type Stores struct {
	DB  *db.DB
	SQL *sql.DB
}

// OpenStores connects both handles and applies migrations when configured.
func OpenStores(ctx context.Context, cfg *config.DatabaseConfig) (*Stores, error) {
	pool, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	sqlDB, err := postgres.NewConnection(ctx, cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := db.MigrateDB(ctx, sqlDB); err != nil {
			pool.Close()
			sqlDB.Close()
			return nil, err
		}
	}

	return &Stores{DB: pool, SQL: sqlDB}, nil
}

func (s *Stores) Close() {
	if s == nil {
		return
	}
	s.DB.Close()
	if s.SQL != nil {
		s.SQL.Close()
	}
}
