package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"sanko/internal/cli"
	"sanko/internal/config"
	"sanko/internal/core"
	apphttp "sanko/internal/http"
	"sanko/internal/log"
	"sanko/internal/seed"
	"sanko/internal/services"
	"sanko/internal/state"
	"sanko/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	res := cli.InitStore(logger, cfg)
	defer func() { _ = res.Cleanup() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	initial := loadInitialState(ctx, res.Store, cfg, logger)
	eng := state.New(initial)

	persister := services.NewPersister(res.Store, logger)
	eng.OnChange(persister.Notify)

	resetState := func() core.AppState { return seed.InitialState(time.Now()) }
	srv := apphttp.NewServer(":"+cfg.Port, eng, res.Store, resetState, cfg.MetricsCacheTTL, logger)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return persister.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("Starting sanko server",
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend,
			"groups", len(initial.Groups))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

// loadInitialState restores the saved snapshot, seeding the sample data
// on first run when enabled. A corrupt snapshot counts as absent.
func loadInitialState(ctx context.Context, store storage.SnapshotStore, cfg *config.Config, logger *log.Logger) core.AppState {
	snap, ok, err := store.Load(ctx)
	if err != nil {
		logger.Error("Failed loading saved state", log.FieldError, err)
		os.Exit(1)
	}
	if ok {
		logger.Info("Loaded saved state", "groups", len(snap.Groups))
		return snap
	}

	if cfg.SeedSampleData {
		initial := seed.InitialState(time.Now())
		if err := store.Save(ctx, initial); err != nil {
			logger.Warn("Failed persisting seeded state", log.FieldError, err)
		}
		logger.Info("Seeded sample data", "groups", len(initial.Groups))
		return initial
	}

	return core.AppState{Groups: []core.Group{}, CurrentView: core.ViewDashboard}
}
