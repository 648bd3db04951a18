// Package app wires configuration into record sources for the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felipediel/watcher/internal/api"
	"github.com/felipediel/watcher/internal/config"
	"github.com/felipediel/watcher/internal/db"
	"github.com/felipediel/watcher/internal/storage"
	"github.com/felipediel/watcher/internal/votes"
)

// App holds the record sources and the resources behind them
type App struct {
	Sources *votes.Sources
	Service *votes.Service
	// Checks reports on the backing store, keyed by service name
	Checks map[string]api.HealthChecker

	database *db.Postgres
}

// Open builds the sources selected by cfg.DataSource
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{
		Service: votes.NewService(logger),
		Checks:  make(map[string]api.HealthChecker),
	}

	switch cfg.DataSource {
	case config.SourcePostgres:
		if err := a.openPostgres(ctx, cfg); err != nil {
			return nil, err
		}
	default:
		if err := a.openCSV(ctx, cfg); err != nil {
			return nil, err
		}
	}

	logger.Info("Record sources ready", "source", cfg.DataSource)
	return a, nil
}

func (a *App) openCSV(ctx context.Context, cfg *config.Config) error {
	local := storage.Dir{Root: cfg.MediaRoot}
	router := storage.NewRouter(local)

	if cfg.S3.Bucket != "" {
		s3, err := storage.NewS3(ctx, storage.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 opener: %w", err)
		}
		router.Handle("s3", s3)
	}

	paths := votes.Paths{
		Legislators: cfg.CSV.Legislators,
		Bills:       cfg.CSV.Bills,
		Votes:       cfg.CSV.Votes,
		VoteResults: cfg.CSV.VoteResults,
	}
	sources, err := votes.NewCSVSources(router, paths)
	if err != nil {
		return fmt.Errorf("failed to configure CSV sources: %w", err)
	}
	a.Sources = sources
	a.Checks["files"] = api.HealthFunc(func(context.Context) error {
		return statLocal(local, paths)
	})
	return nil
}

func (a *App) openPostgres(ctx context.Context, cfg *config.Config) error {
	database, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.Options{
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: cfg.DBConnLifetime,
	})
	if err != nil {
		return err
	}

	tables := votes.Tables{
		Legislators: cfg.Tables.Legislators,
		Bills:       cfg.Tables.Bills,
		Votes:       cfg.Tables.Votes,
		VoteResults: cfg.Tables.VoteResults,
	}
	if err := db.VerifySchema(ctx, database.Pool(), tables.TableColumns()); err != nil {
		database.Close()
		return err
	}

	sources, err := votes.NewPostgresSources(database.Pool(), tables)
	if err != nil {
		database.Close()
		return fmt.Errorf("failed to configure table sources: %w", err)
	}
	a.Sources = sources
	a.database = database
	a.Checks["database"] = database
	return nil
}

// Close releases the database pool, if any
func (a *App) Close() {
	if a.database != nil {
		a.database.Close()
	}
}

// statLocal checks the CSV files that live on the local disk. Remote
// locators are left to the request that reads them.
func statLocal(dir storage.Dir, paths votes.Paths) error {
	var errs []error
	for _, locator := range []string{paths.Legislators, paths.Bills, paths.Votes, paths.VoteResults} {
		if scheme := storage.Scheme(locator); scheme != "" && scheme != "file" {
			continue
		}
		if err := dir.Stat(locator); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
