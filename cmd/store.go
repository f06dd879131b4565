/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"database/sql"
	"errors"

	"github.com/postboard/apiserver/config"
	"github.com/postboard/apiserver/internal/db"
)

// openDatabase connects to the configured SQL store for one-shot commands.
func openDatabase(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.Database.Driver == config.DriverMemory {
		return nil, errors.New("DB_DRIVER=memory keeps nothing between runs; use postgres or sqlite3")
	}
	if cfg.Database.AutoMigrate {
		if err := db.MigrateUp(cfg.Database); err != nil {
			return nil, err
		}
	}
	return db.Open(ctx, cfg)
}
