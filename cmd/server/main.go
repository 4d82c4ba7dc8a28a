package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"screening-datagen/internal/config"
	"screening-datagen/internal/db"
	httpserver "screening-datagen/internal/http"
	"screening-datagen/internal/logger"
	"screening-datagen/internal/report"
)

func main() {
	cfg := config.Load()
	if path := os.Getenv("DATAGEN_CONFIG"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			logger.Log.WithError(err).Fatal("failed to load config file")
		}
	}
	log := logger.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Postgres when DATABASE_URL is set, otherwise the local sqlite file.
	dialect, dsn := db.SQLite, cfg.SQLitePath
	if cfg.DatabaseURL != "" {
		dialect, dsn = db.Postgres, cfg.DatabaseURL
	}
	conn, err := db.Open(ctx, dialect, dsn)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer conn.Close()
	if err := db.Migrate(ctx, conn, dialect); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	repo := db.NewRepository(conn, dialect)

	var notifier httpserver.Listener
	if dialect == db.Postgres {
		notifier = db.NewNotifier(conn, dsn, cfg.NotifyChannel, log)
	}
	srv := httpserver.NewServer(repo, notifier, report.NewExporter(cfg.FontPath), log)

	addr := ":" + cfg.ServerPort
	httpSrv := &http.Server{Addr: addr, Handler: srv, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	log.WithFields(map[string]interface{}{"addr": addr, "store": dialect}).Info("records server listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server error")
	}
}
