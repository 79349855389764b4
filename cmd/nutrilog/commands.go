// cmd/nutrilog/commands.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"nutrilog/internal/account"
	"nutrilog/internal/advice"
	"nutrilog/internal/ledger"
	"nutrilog/internal/llm"
	"nutrilog/internal/nutrition"
	"nutrilog/internal/report"
	"nutrilog/internal/server"
	"nutrilog/internal/storage"
)

type ServeCmd struct {
	Host string `help:"Host address (overrides HTTP_HOST)."`
	Port int    `help:"Port for HTTP transport (overrides HTTP_PORT)."`
	DB   string `help:"Database DSN (overrides DB_DSN)." name:"db"`
}

func (c *ServeCmd) Run(app *appContext) error {
	cfg := app.cfg
	if c.Host != "" {
		cfg.HTTP.Host = c.Host
	}
	if c.Port != 0 {
		cfg.HTTP.Port = c.Port
	}
	if c.DB != "" {
		cfg.DB.DSN = c.DB
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	model := llm.NewClient(cfg.Model)
	lookup := nutrition.NewService(model)
	srv := server.NewNutritionServer(server.Deps{
		Config:   cfg,
		Log:      app.log,
		Store:    store,
		Accounts: account.NewService(store, cfg.Auth),
		Lookup:   lookup,
		Ledger:   ledger.New(store, lookup, app.log),
		Reports:  report.NewEngine(store),
		Advice:   advice.NewGenerator(model, cfg.Advice.Language),
		Version:  version,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		app.log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})
	return g.Wait()
}

type MigrateCmd struct {
	DB string `help:"Database DSN (overrides DB_DSN)." name:"db"`
}

func (c *MigrateCmd) Run(app *appContext) error {
	cfg := app.cfg.DB
	if c.DB != "" {
		cfg.DSN = c.DB
	}
	store, err := storage.Open(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	app.log.Info("schema ready", "driver", cfg.Driver)
	fmt.Fprintln(os.Stdout, "✓ schema ready")
	return nil
}
