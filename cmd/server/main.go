package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/teambot/internal/config"
	"github.com/DoyleJ11/teambot/internal/dispatch"
	"github.com/DoyleJ11/teambot/internal/httpapi"
	"github.com/DoyleJ11/teambot/internal/hub"
	"github.com/DoyleJ11/teambot/internal/logging"
	"github.com/DoyleJ11/teambot/internal/store"
	"github.com/DoyleJ11/teambot/internal/ws"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := store.Open(cfg, log)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer func() { err = multierr.Append(err, st.Close()) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The hub outlives ctx so the syncer's final flush can still read it.
	h := hub.NewHub(context.Background(), cfg.SessionInbox, log)
	defer func() {
		h.Shutdown()
		<-h.Done()
	}()

	syncer := store.NewSyncer(h, st, cfg.SnapshotInterval, log)
	if err := syncer.Restore(ctx); err != nil {
		return err
	}

	d := dispatch.New(h, log)
	conns := ws.NewConns()
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.SetupRoutes(h, d, conns, cfg.CommandTimeout, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(conns.Close)

	// Sync stops only after the HTTP server has drained, so the final
	// flush sees every accepted command.
	syncCtx, stopSync := context.WithCancel(context.Background())
	defer stopSync()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.String("store", cfg.Store))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		defer stopSync()
		err := srv.Shutdown(shutdownCtx)
		// Shutdown skips hijacked websocket connections; wait for them
		// so their last commands are in the final flush.
		conns.Close()
		return multierr.Append(err, conns.Wait(shutdownCtx))
	})
	g.Go(func() error {
		return syncer.Run(syncCtx)
	})

	err = g.Wait()
	log.Info("server stopped", zap.Error(err))
	return err
}
