package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/ticketgate/cliparse"
	"github.com/danielhkuo/ticketgate/clock"
	"github.com/danielhkuo/ticketgate/db"
	"github.com/danielhkuo/ticketgate/gate"
	"github.com/danielhkuo/ticketgate/middleware"
	"github.com/danielhkuo/ticketgate/roster"
	"github.com/danielhkuo/ticketgate/router"
	"github.com/danielhkuo/ticketgate/store"
	"github.com/danielhkuo/ticketgate/syncer"
)

func main() {
	var err error

	// Text logs for people, JSON for collectors
	var handler slog.Handler = slog.NewJSONHandler(os.Stderr, nil)
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, nil)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if err := cliparse.LoadEnvFile(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	localConn, localDialect, err := openDatabase(cfg.DatabaseURL, cfg.DatabaseType)
	if err != nil {
		slog.Error("local database unavailable", "error", err)
		os.Exit(1)
	}
	defer localConn.Close()

	// Without a shared database every ledger lives beside the local state,
	// which is enough for a single door.
	sharedConn, sharedDialect := localConn, localDialect
	if cfg.SharedDatabaseURL != "" {
		sharedConn, sharedDialect, err = openDatabase(cfg.SharedDatabaseURL, "")
		if err != nil {
			slog.Error("shared database unavailable", "error", err)
			os.Exit(1)
		}
		defer sharedConn.Close()
	}
	slog.Info("Database schema ready", "local", localDialect, "shared", sharedDialect)

	ctx := context.Background()
	svc := gate.New(ctx, gate.Options{
		Local:   store.WithPrefix(store.NewSQL(localConn, localDialect), "local:"),
		Shared:  store.WithPrefix(store.NewSQL(sharedConn, sharedDialect), "shared:"),
		Clock:   clock.Real(),
		Logger:  logger,
		Fetcher: roster.NewFetcher(cfg.FetchTimeout, logger),
		Label:   cfg.DeviceLabel,
	})
	if !svc.Device().Persisted {
		slog.Warn("device id could not be saved; it will change on restart", "device_id", svc.DeviceID())
	}

	coord := syncer.New(svc, clock.Real(), cfg.SyncInterval, logger)
	defer coord.Stop()

	// Create router
	mux := router.NewRouter(svc, coord, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		coord.Stop()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "device_id", svc.DeviceID(), "label", svc.Label())
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

func openDatabase(url, dbType string) (*sql.DB, db.Dialect, error) {
	dialect, err := db.DialectFor(url, dbType)
	if err != nil {
		return nil, "", err
	}
	conn, err := db.Open(url, dialect)
	if err != nil {
		return nil, "", err
	}
	if err := db.CreateSchema(conn, dialect); err != nil {
		conn.Close()
		return nil, "", err
	}
	return conn, dialect, nil
}
