package main

import (
	"context"

	"screening-datagen/internal/db"
)

// openRepository connects to the named SQL store and applies its schema.
// Postgres connections also get a notifier for the save channel.
func openRepository(ctx context.Context, name string) (*db.Repository, *db.Notifier, error) {
	dialect, dsn := db.SQLite, cfg.SQLitePath
	if name == "postgres" {
		dialect, dsn = db.Postgres, cfg.DatabaseURL
	}
	conn, err := db.Open(ctx, dialect, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(ctx, conn, dialect); err != nil {
		conn.Close()
		return nil, nil, err
	}
	var notifier *db.Notifier
	if dialect == db.Postgres {
		notifier = db.NewNotifier(conn, dsn, cfg.NotifyChannel, log)
	}
	return db.NewRepository(conn, dialect), notifier, nil
}

// defaultStore picks postgres when a database URL is configured.
func defaultStore() string {
	if cfg.DatabaseURL != "" {
		return "postgres"
	}
	return "sqlite"
}
