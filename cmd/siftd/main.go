// Siftd serves membership filters over HTTP.
//
// Usage:
//
//	siftd -addr :8000 -filters-dir filters
//
// Flags:
//
//	-addr         Listen address (default: ":8000")
//	-filters-dir  Directory of persisted filter files (default: "filters")
//	-log-level    Log level: debug, info, warn, error (default: "info")
//	-log-json     Emit JSON logs instead of text (default: false)
//
// On startup siftd loads every filter file from the filters directory and
// serves them at POST /router/{uuid}. POST /reload rescans the directory and
// replaces the loaded set wholesale without a restart.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/siftd/sift/registry"
	"github.com/siftd/sift/service"
)

func main() {
	addrFlag := flag.String("addr", ":8000", "listen address")
	dirFlag := flag.String("filters-dir", "filters", "directory of persisted filter files")
	levelFlag := flag.String("log-level", "info", "log level: debug, info, warn, error")
	jsonFlag := flag.Bool("log-json", false, "emit JSON logs instead of text")
	flag.Parse()

	log, err := newLogger(*levelFlag, *jsonFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(*addrFlag, *dirFlag, log); err != nil {
		log.Error("siftd exited with error", "error", err)
		os.Exit(1)
	}
}

func run(addr, dir string, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := registry.New(dir, log)
	n, err := reg.Reload(ctx)
	if err != nil {
		// Serve with an empty registry; operators can fix the directory
		// and hit /reload without a restart.
		log.Warn("initial filter load failed", "dir", dir, "error", err)
	} else {
		log.Info("filters loaded", "count", n, "dir", dir)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           service.NewHandler(reg, log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newLogger(level string, asJSON bool) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
}
