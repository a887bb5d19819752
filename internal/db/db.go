// Package db opens the relational store and applies migrations.
package db

import (
	"database/sql"
	"fmt"

	"artisan/internal/config"
)

// Open returns a *sql.DB based on the configured driver.
func Open(cfg *config.Config) (*sql.DB, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return openSQLite(cfg.DBPath)
	case "postgres":
		return openPostgres(cfg.DBUrl)
	default:
		return nil, fmt.Errorf("unsupported db driver: %s", cfg.DBDriver)
	}
}
