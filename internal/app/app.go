package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"jsonadaptor/internal/adaptor"
	"jsonadaptor/internal/config"
	"jsonadaptor/internal/dbclient"
	"jsonadaptor/internal/domain"
	"jsonadaptor/internal/etl"
	_ "jsonadaptor/internal/etl/sources" // register all sources via init()
	"jsonadaptor/internal/service"
	"jsonadaptor/internal/storage"
)

// App wires configuration, destination, run log and import service
// together for one process.
type App struct {
	cfg    config.Config
	logger *slog.Logger

	db      *storage.DB
	closer  interface{ Close() error }
	dest    etl.Destination
	imports *service.ImportService
}

// New creates a new App.
func New(cfg config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{cfg: cfg, logger: logger}
}

// Startup connects to the destination and opens the run log.
func (a *App) Startup(ctx context.Context) error {
	if a.cfg.RunLog != "" {
		db, err := storage.New(a.cfg.RunLog)
		if err != nil {
			return fmt.Errorf("open run log: %w", err)
		}
		a.db = db
	}

	dest, closer, err := a.destination(ctx)
	if err != nil {
		return err
	}
	a.dest, a.closer = dest, closer

	var opts []adaptor.Option
	if a.cfg.SymmetricInt32 {
		opts = append(opts, adaptor.WithSymmetricInt32())
	}
	engine := &etl.Engine{
		Dest:      dest,
		Options:   opts,
		BatchSize: a.cfg.BatchSize,
		Logger:    a.logger,
	}

	var runs domain.RunStore
	if a.db != nil {
		runs = storage.NewRunStore(a.db)
	}
	a.imports = service.NewImportService(engine, runs, service.LogEmitter{Logger: a.logger})
	a.imports.Timeout = a.cfg.Timeout
	return nil
}

// destination builds the row target named by the configured driver.
func (a *App) destination(ctx context.Context) (etl.Destination, interface{ Close() error }, error) {
	conn := a.cfg.Connection()

	switch conn.Driver {
	case domain.DatabaseDriverStdout:
		return &etl.StdoutDestination{W: os.Stdout}, nil, nil
	case domain.DatabaseDriverMongoDB:
		mc, err := dbclient.NewMongoConnector(conn, a.cfg.Password)
		if err != nil {
			return nil, nil, err
		}
		if err := mc.TestConnection(ctx); err != nil {
			mc.Close()
			return nil, nil, fmt.Errorf("connect %s: %w", conn.Driver, err)
		}
		return &etl.MongoDestination{Conn: mc, Collection: a.cfg.Table}, mc, nil
	default:
		c, err := dbclient.NewConnector(conn, a.cfg.Password)
		if err != nil {
			return nil, nil, err
		}
		if err := c.TestConnection(ctx); err != nil {
			c.Close()
			return nil, nil, fmt.Errorf("connect %s: %w", conn.Driver, err)
		}
		return &etl.SQLDestination{Conn: c, Table: a.cfg.Table}, c, nil
	}
}

// Run imports every configured input once, then keeps watching and
// scheduling until ctx is done when either is configured.
func (a *App) Run(ctx context.Context) error {
	var errs []error
	for _, job := range a.Jobs() {
		if _, err := a.imports.RunJob(ctx, job, service.TriggerManual); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", job.Name, err))
		}
	}

	if a.cfg.Watch == "" && a.cfg.Schedule == "" {
		return errors.Join(errs...)
	}
	for _, err := range errs {
		a.logger.Error("import failed", slog.Any("err", err))
	}

	if a.cfg.Watch != "" {
		if err := a.imports.Watch(ctx, a.watchJob(), a.cfg.Watch, ""); err != nil {
			return err
		}
	}
	if a.cfg.Schedule != "" {
		for _, job := range a.Jobs() {
			if err := a.imports.Schedule(ctx, a.cfg.Schedule, job); err != nil {
				return err
			}
		}
	}

	<-ctx.Done()
	return nil
}

// Shutdown stops background work, waits for running imports and closes
// every connection.
func (a *App) Shutdown(ctx context.Context) {
	if a.imports != nil {
		a.imports.Stop()
		a.imports.WaitRunning(ctx)
	}
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			a.logger.Warn("close destination", slog.Any("err", err))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
