// Package server initializes and runs the invoicing backend. It wires the
// Postgres repositories, the REST handlers and the websocket hub, and
// handles graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/faktur-app/faktur/internal/common"
	"github.com/faktur-app/faktur/internal/logging"
	"github.com/faktur-app/faktur/internal/models"
	"github.com/faktur-app/faktur/internal/server/api"
	"github.com/faktur-app/faktur/internal/server/config"
	"github.com/faktur-app/faktur/internal/server/realtime"
	"github.com/faktur-app/faktur/internal/server/repository"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	hub     *realtime.Hub
	server  *http.Server
	closeDB func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := repository.Open(ctx, c.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	customerRepo := repository.NewPostgresRecords[models.Customer](db, common.FamilyCustomers)
	itemRepo := repository.NewPostgresRecords[models.Item](db, common.FamilyItems)
	invoiceRepo := repository.NewPostgresRecords[models.Invoice](db, common.FamilyInvoices)
	counters := repository.NewPostgresCounters(db)

	hub := realtime.NewHub(logger)

	router := api.New(
		api.NewCustomerHandler(customerRepo, invoiceRepo, hub, logger),
		api.NewItemHandler(itemRepo, hub, logger),
		api.NewInvoiceHandler(invoiceRepo, counters, hub, logger),
		hub.Handle,
	)

	srv := &http.Server{
		Addr:         c.Addr(),
		Handler:      router,
		ReadTimeout:  c.Server.ReadTimeout,
		WriteTimeout: c.Server.WriteTimeout,
	}

	return &App{config: c, logger: logger, hub: hub, server: srv, closeDB: db.Close}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.Addr())

	app.initSignalHandler(cancelFunc)

	errCh := make(chan error, 1)
	go func() {
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		app.logger.Error(ctx, "server failed", "error", err)
	}

	app.shutdown()
}

func (app *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
	defer cancel()

	app.hub.Close()
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error(ctx, "shutdown error", "error", err)
	}
	if err := app.closeDB(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "server stopped")
}
